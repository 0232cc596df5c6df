package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/config"
	"github.com/guildpoint/guildpoint/internal/db/models"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed initial data if user table is empty

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		// Create default admin user
		db.Create(
			&models.User{
				Username:    "admin",
				Email:       "admin@localhost",
				DisplayName: "Administrator",
				Password:    models.HashPassword("changeme"),
				AuthSource:  models.AuthSourceLocal,
				Active:      true,
			},
		)

		log.Warn().Msg("created default admin user, change its password immediately")
	}
}
