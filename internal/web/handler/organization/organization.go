// Package organization provides handlers for organization CRUD and analytics.
//
// The public read endpoint deliberately bypasses the permission evaluator:
// organization profiles are public, and the evaluator is reserved for
// organization-scoped actions. Every other route declares its gate stages.
package organization

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	"github.com/guildpoint/guildpoint/internal/db/controller/organization"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/handler"
)

const (
	// Path is the base path for organization routes.
	Path = handler.APIRootPath + "/orgs"

	// RouteOne addresses one organization by its external ID.
	RouteOne = Path + "/:" + auth.OrganizationParam
	// RouteAnalytics serves the aggregated organization summary.
	RouteAnalytics = RouteOne + "/analytics"
)

// Service provides organization handlers.
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

	app.Post(Path,
		auth.RequireSession(db),
		s.Create,
	)
	app.Get(RouteOne, s.Get) // public read, no gate stages
	app.Patch(RouteOne,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermManageOrganization),
		s.Update,
	)
	app.Get(RouteAnalytics,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermViewAnalytics),
		s.Analytics,
	)
}

// Create creates an organization owned by the authenticated user.
func (s *Service) Create(c *fiber.Ctx) error {
	input := new(createInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	user := auth.CurrentUser(c)

	org, err := organization.Create(s.db, input.Name, input.Description, user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to create organization")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(orgResponse(org))
}

// Get returns the public organization profile.
func (s *Service) Get(c *fiber.Ctx) error {
	org, err := organization.GetByExternalID(s.db, c.Params(auth.OrganizationParam))
	if errors.Is(err, organization.ErrOrganizationNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to load organization")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(orgResponse(org))
}

// Update changes the organization profile.
func (s *Service) Update(c *fiber.Ctx) error {
	input := new(updateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	org := auth.CurrentOrganization(c)

	updated, err := organization.Update(s.db, org.ID, input.Name, input.Description)
	if errors.Is(err, organization.ErrOrganizationNameEmpty) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err != nil {
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to update organization")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(orgResponse(updated))
}

// Analytics returns the aggregated organization summary.
func (s *Service) Analytics(c *fiber.Ctx) error {
	org := auth.CurrentOrganization(c)

	summary, err := organization.Aggregate(s.db, org.ID)
	if err != nil {
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to aggregate analytics")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(summary)
}

func orgResponse(org *models.Organization) fiber.Map {
	return fiber.Map{
		"id":          org.ExternalID,
		"name":        org.Name,
		"description": org.Description,
		"owner_id":    org.OwnerID,
		"created_at":  org.CreatedAt,
	}
}
