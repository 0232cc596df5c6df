// Package comment provides handlers for event comments.
//
// Reading comments is public. Any authenticated user may comment; only the
// comment's creator may delete it. There is no role-based path to deleting
// someone else's comment.
package comment

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	commentctl "github.com/guildpoint/guildpoint/internal/db/controller/comment"
	eventctl "github.com/guildpoint/guildpoint/internal/db/controller/event"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/handler"
	eventhandler "github.com/guildpoint/guildpoint/internal/web/handler/organization/event"
)

const (
	// Path is the base path for comment routes.
	Path = eventhandler.RouteOne + "/comments"

	// RouteOne addresses one comment by ID.
	RouteOne = Path + "/:commentID"
)

// Service provides comment handlers.
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
		auth.RequireCreator(s.loadComment),
		s.Delete,
	)
}

// List returns the event's comments, oldest first.
func (s *Service) List(c *fiber.Ctx) error {
	event, err := s.resolveEvent(c)
	if err != nil {
		return s.eventError(c, err)
	}

	comments, err := commentctl.List(s.db, event.ID)
	if err != nil {
		log.Error().Err(err).Uint64("event_id", event.ID).Msg("failed to list comments")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	out := make([]fiber.Map, 0, len(comments))
	for i := range comments {
		out = append(out, commentResponse(&comments[i]))
	}

	return c.JSON(out)
}

// Create adds a comment to the event on behalf of the authenticated user.
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

	comment, err := commentctl.Create(s.db, event.ID, user.ID, input.Body)

	switch {
	case errors.Is(err, commentctl.ErrBodyEmpty):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint64("event_id", event.ID).Msg("failed to create comment")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(commentResponse(comment))
}

// Delete removes a comment. Only reachable by the comment's creator.
func (s *Service) Delete(c *fiber.Ctx) error {
	event, err := s.resolveEvent(c)
	if err != nil {
		return s.eventError(c, err)
	}

	commentID, ok := parseCommentID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": commentctl.ErrCommentNotFound.Error()})
	}

	err = commentctl.Delete(s.db, event.ID, commentID)

	switch {
	case errors.Is(err, commentctl.ErrCommentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint64("event_id", event.ID).Uint64("comment_id", commentID).
			Msg("failed to delete comment")

		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// loadComment resolves the route's comment for the creator-ownership check.
func (s *Service) loadComment(c *fiber.Ctx) (auth.CreatorOwned, error) {
	event, err := s.resolveEvent(c)
	if err != nil {
		if errors.Is(err, eventctl.ErrEventNotFound) {
			return nil, gorm.ErrRecordNotFound
		}

		return nil, err
	}

	commentID, ok := parseCommentID(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	comment, err := commentctl.Get(s.db, event.ID, commentID)
	if errors.Is(err, commentctl.ErrCommentNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return comment, nil
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

func parseCommentID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("commentID"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

func commentResponse(m *models.Comment) fiber.Map {
	return fiber.Map{
		"id":         m.ID,
		"body":       m.Body,
		"creator_id": m.CreatorID,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	}
}
