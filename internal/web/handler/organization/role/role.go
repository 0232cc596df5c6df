// Package role provides handlers for managing organization roles (CRUD).
// Every route requires the MANAGE_ORGANIZATION permission: role structure is
// organization administration and is not exposed to regular members.
package role

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	"github.com/guildpoint/guildpoint/internal/db/controller/role"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/handler"
	orghandler "github.com/guildpoint/guildpoint/internal/web/handler/organization"
)

const (
	// Path is the base path for role management.
	Path = orghandler.RouteOne + "/roles"

	// RouteOne addresses one role by its numeric ID.
	RouteOne = Path + "/:roleID"

	// RoutePermissions lists the permission catalog for role editors.
	RoutePermissions = orghandler.RouteOne + "/permissions"
)

// Service provides CRUD operations for roles.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	// every role route shares the same gate stages
	gate := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{
			auth.RequireSession(db),
			auth.ResolveOrganization(db),
			auth.RequirePermission(authService, auth.PermManageOrganization),
			h,
		}
	}

	app.Get(Path, gate(s.List)...)
	app.Post(Path, gate(s.Create)...)
	app.Patch(RouteOne, gate(s.Update)...)
	app.Delete(RouteOne, gate(s.Delete)...)
	app.Get(RoutePermissions, gate(s.Permissions)...)
}

// List returns the organization's roles in insertion order.
func (s *Service) List(c *fiber.Ctx) error {
	org := auth.CurrentOrganization(c)

	roles, err := role.List(s.db, org.ID)
	if err != nil {
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to list roles")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	out := make([]fiber.Map, 0, len(roles))
	for i := range roles {
		out = append(out, roleResponse(&roles[i]))
	}

	return c.JSON(out)
}

// Create creates a role with a permission set drawn from the catalog.
func (s *Service) Create(c *fiber.Ctx) error {
	input := new(createInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	org := auth.CurrentOrganization(c)

	created, err := role.Create(s.db, org.ID, input.Name, input.Description, input.Permissions)

	switch {
	case errors.Is(err, role.ErrRoleNameConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrUnknownPermission):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to create role")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(roleResponse(created))
}

// Update applies a partial update to a role.
func (s *Service) Update(c *fiber.Ctx) error {
	roleID, ok := parseRoleID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": role.ErrRoleNotFound.Error()})
	}

	input := new(updateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	org := auth.CurrentOrganization(c)

	updated, err := role.Update(s.db, org.ID, roleID, role.Patch{
		Name:        input.Name,
		Description: input.Description,
		Permissions: input.Permissions,
	})

	switch {
	case errors.Is(err, role.ErrRoleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, role.ErrRoleNameConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, role.ErrRoleNameEmpty), errors.Is(err, auth.ErrUnknownPermission):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Uint("role_id", roleID).
			Msg("failed to update role")

		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(roleResponse(updated))
}

// Delete removes a role; members holding it revert to "no role".
func (s *Service) Delete(c *fiber.Ctx) error {
	roleID, ok := parseRoleID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": role.ErrRoleNotFound.Error()})
	}

	org := auth.CurrentOrganization(c)

	err := role.Delete(s.db, org.ID, roleID)

	switch {
	case errors.Is(err, role.ErrRoleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Uint("role_id", roleID).
			Msg("failed to delete role")

		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Permissions lists the full permission catalog for role editors.
func (s *Service) Permissions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"permissions": auth.Permissions()})
}

func parseRoleID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("roleID"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

func roleResponse(r *models.Role) fiber.Map {
	return fiber.Map{
		"id":          r.ID,
		"name":        r.Name,
		"description": r.Description,
		"permissions": r.PermissionNames(),
	}
}
