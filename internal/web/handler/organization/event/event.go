// Package event provides handlers for organization events.
//
// Reading events is public. Creating one requires MANAGE_EVENTS; modifying or
// deleting one is allowed to the event's creator OR any member holding
// MANAGE_EVENTS, whichever matches first.
package event

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	eventctl "github.com/guildpoint/guildpoint/internal/db/controller/event"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/handler"
	orghandler "github.com/guildpoint/guildpoint/internal/web/handler/organization"
)

const (
	// Path is the base path for event routes.
	Path = orghandler.RouteOne + "/events"

	// EventParam is the route parameter carrying the event's external ID.
	EventParam = "eventID"

	// RouteOne addresses one event by its external ID.
	RouteOne = Path + "/:" + EventParam
)

// Service provides event handlers.
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

	app.Get(Path, auth.ResolveOrganization(db), s.List)
	app.Get(RouteOne, auth.ResolveOrganization(db), s.Get)

	app.Post(Path,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermManageEvents),
		s.Create,
	)
	app.Patch(RouteOne,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermissionOrCreator(authService, auth.PermManageEvents, s.loadEvent),
		s.Update,
	)
	app.Delete(RouteOne,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermissionOrCreator(authService, auth.PermManageEvents, s.loadEvent),
		s.Delete,
	)
}

// List returns the organization's events.
func (s *Service) List(c *fiber.Ctx) error {
	org := auth.CurrentOrganization(c)

	events, err := eventctl.List(s.db, org.ID)
	if err != nil {
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to list events")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	out := make([]fiber.Map, 0, len(events))
	for i := range events {
		out = append(out, eventResponse(&events[i]))
	}

	return c.JSON(out)
}

// Get returns one event.
func (s *Service) Get(c *fiber.Ctx) error {
	org := auth.CurrentOrganization(c)

	e, err := eventctl.GetByExternalID(s.db, org.ID, c.Params(EventParam))

	switch {
	case errors.Is(err, eventctl.ErrEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to get event")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(eventResponse(e))
}

// Create creates an event on behalf of the authenticated user.
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
	user := auth.CurrentUser(c)

	e, err := eventctl.Create(s.db, org.ID, user.ID, eventctl.Fields{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	})

	switch {
	case errors.Is(err, eventctl.ErrTitleEmpty), errors.Is(err, eventctl.ErrInvalidTimeRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to create event")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(eventResponse(e))
}

// Update applies a partial update to an event.
func (s *Service) Update(c *fiber.Ctx) error {
	input := new(updateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	org := auth.CurrentOrganization(c)

	e, err := eventctl.Update(s.db, org.ID, c.Params(EventParam), eventctl.Patch{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	})

	switch {
	case errors.Is(err, eventctl.ErrEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, eventctl.ErrTitleEmpty), errors.Is(err, eventctl.ErrInvalidTimeRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to update event")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(eventResponse(e))
}

// Delete removes an event with its comments and reviews.
func (s *Service) Delete(c *fiber.Ctx) error {
	org := auth.CurrentOrganization(c)

	err := eventctl.Delete(s.db, org.ID, c.Params(EventParam))

	switch {
	case errors.Is(err, eventctl.ErrEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to delete event")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// loadEvent resolves the route's event for the creator-ownership check.
func (s *Service) loadEvent(c *fiber.Ctx) (auth.CreatorOwned, error) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		return nil, gorm.ErrRecordNotFound
	}

	e, err := eventctl.GetByExternalID(s.db, org.ID, c.Params(EventParam))
	if errors.Is(err, eventctl.ErrEventNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return e, nil
}

func eventResponse(e *models.Event) fiber.Map {
	return fiber.Map{
		"id":          e.ExternalID,
		"title":       e.Title,
		"description": e.Description,
		"location":    e.Location,
		"starts_at":   e.StartsAt,
		"ends_at":     e.EndsAt,
		"creator_id":  e.CreatorID,
		"created_at":  e.CreatedAt,
		"updated_at":  e.UpdatedAt,
	}
}
