// Package review provides handlers for event reviews.
//
// Reading reviews is public. Any authenticated user may leave one review per
// event; only the review's creator may delete it.
package review

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	eventctl "github.com/guildpoint/guildpoint/internal/db/controller/event"
	reviewctl "github.com/guildpoint/guildpoint/internal/db/controller/review"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/handler"
	eventhandler "github.com/guildpoint/guildpoint/internal/web/handler/organization/event"
)

const (
	// Path is the base path for review routes.
	Path = eventhandler.RouteOne + "/reviews"

	// RouteOne addresses one review by ID.
	RouteOne = Path + "/:reviewID"
)

// Service provides review handlers.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	app.Get(Path, auth.ResolveOrganization(db), s.List)
	app.Post(Path,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		s.Create,
	)
	app.Delete(RouteOne,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequireCreator(s.loadReview),
		s.Delete,
	)
}

// List returns the event's reviews, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	event, err := s.resolveEvent(c)
	if err != nil {
		return s.eventError(c, err)
	}

	reviews, err := reviewctl.List(s.db, event.ID)
	if err != nil {
		log.Error().Err(err).Uint64("event_id", event.ID).Msg("failed to list reviews")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	out := make([]fiber.Map, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviewResponse(&reviews[i]))
	}

	return c.JSON(out)
}

// Create adds the authenticated user's review of the event.
func (s *Service) Create(c *fiber.Ctx) error {
	input := new(createInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	event, err := s.resolveEvent(c)
	if err != nil {
		return s.eventError(c, err)
	}

	user := auth.CurrentUser(c)

	review, err := reviewctl.Create(s.db, event.ID, user.ID, input.Rating, input.Body)

	switch {
	case errors.Is(err, reviewctl.ErrInvalidRating):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reviewctl.ErrAlreadyReviewed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint64("event_id", event.ID).Msg("failed to create review")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(reviewResponse(review))
}

// Delete removes a review. Only reachable by the review's creator.
func (s *Service) Delete(c *fiber.Ctx) error {
	event, err := s.resolveEvent(c)
	if err != nil {
		return s.eventError(c, err)
	}

	reviewID, ok := parseReviewID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": reviewctl.ErrReviewNotFound.Error()})
	}

	err = reviewctl.Delete(s.db, event.ID, reviewID)

	switch {
	case errors.Is(err, reviewctl.ErrReviewNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint64("event_id", event.ID).Uint64("review_id", reviewID).
			Msg("failed to delete review")

		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// loadReview resolves the route's review for the creator-ownership check.
func (s *Service) loadReview(c *fiber.Ctx) (auth.CreatorOwned, error) {
	event, err := s.resolveEvent(c)
	if err != nil {
		if errors.Is(err, eventctl.ErrEventNotFound) {
			return nil, gorm.ErrRecordNotFound
		}

		return nil, err
	}

	reviewID, ok := parseReviewID(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	review, err := reviewctl.Get(s.db, event.ID, reviewID)
	if errors.Is(err, reviewctl.ErrReviewNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) resolveEvent(c *fiber.Ctx) (*models.Event, error) {
	org := auth.CurrentOrganization(c)
	return eventctl.GetByExternalID(s.db, org.ID, c.Params(eventhandler.EventParam))
}

func (s *Service) eventError(c *fiber.Ctx, err error) error {
	if errors.Is(err, eventctl.ErrEventNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error().Err(err).Msg("failed to resolve event")

	return c.Status(fiber.StatusInternalServerError).
		JSON(fiber.Map{"error": handler.MsgInternalError})
}

func parseReviewID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("reviewID"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

func reviewResponse(m *models.Review) fiber.Map {
	return fiber.Map{
		"id":         m.ID,
		"rating":     m.Rating,
		"body":       m.Body,
		"creator_id": m.CreatorID,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	}
}
