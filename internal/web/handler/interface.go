package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
)

// Service is the interface for a web handler service. Handlers register
// their own routes, each declaring its request gate stages explicitly.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service)
}
