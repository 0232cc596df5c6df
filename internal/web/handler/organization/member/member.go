// Package member provides handlers for organization membership management:
// listing members, direct adds, role assignment, removal, and invites.
//
// Listing requires VIEW_MEMBERS; every mutation requires MANAGE_MEMBERS.
// Invite redemption is deliberately outside the organization gate: the
// redeeming user is not yet a member, so only a session is required and the
// organization is resolved from the invite code.
package member

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	"github.com/guildpoint/guildpoint/internal/db/controller/membership"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/handler"
	orghandler "github.com/guildpoint/guildpoint/internal/web/handler/organization"
)

const (
	// Path is the base path for member management.
	Path = orghandler.RouteOne + "/members"

	// RouteOne addresses one member by user ID.
	RouteOne = Path + "/:userID"
	// RouteRole assigns or clears a member's role.
	RouteRole = RouteOne + "/role"

	// RouteInvites issues invite codes for the organization.
	RouteInvites = orghandler.RouteOne + "/invites"
	// RouteRedeem redeems an invite code; not organization-scoped.
	RouteRedeem = handler.APIRootPath + "/invites/:code/redeem"

	// defaultInviteTTL is how long issued invites stay redeemable.
	defaultInviteTTL = 7 * 24 * time.Hour
)

// Service provides membership handlers.
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

	app.Get(Path,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermViewMembers),
		s.List,
	)
	app.Post(Path,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermManageMembers),
		s.Add,
	)
	app.Put(RouteRole,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermManageMembers),
		s.AssignRole,
	)
	app.Delete(RouteOne,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermManageMembers),
		s.Remove,
	)
	app.Post(RouteInvites,
		auth.RequireSession(db),
		auth.ResolveOrganization(db),
		auth.RequirePermission(authService, auth.PermManageMembers),
		s.CreateInvite,
	)
	app.Post(RouteRedeem,
		auth.RequireSession(db),
		s.RedeemInvite,
	)
}

// List returns the organization's members with their roles.
func (s *Service) List(c *fiber.Ctx) error {
	org := auth.CurrentOrganization(c)

	members, err := membership.List(s.db, org.ID)
	if err != nil {
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to list members")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	out := make([]fiber.Map, 0, len(members))
	for i := range members {
		out = append(out, memberResponse(&members[i]))
	}

	return c.JSON(out)
}

// Add directly adds a user to the organization, optionally with a role.
func (s *Service) Add(c *fiber.Ctx) error {
	input := new(addInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	org := auth.CurrentOrganization(c)

	m, err := membership.Add(s.db, org.ID, input.UserID, input.RoleID)

	switch {
	case errors.Is(err, membership.ErrAlreadyMember):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, membership.ErrRoleNotInOrganization):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Uint64("member_id", input.UserID).
			Msg("failed to add member")

		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(memberResponse(m))
}

// AssignRole re-assigns or clears a member's role.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	userID, ok := parseUserID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": membership.ErrNotAMember.Error()})
	}

	input := new(assignRoleInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	org := auth.CurrentOrganization(c)

	err := membership.AssignRole(s.db, org.ID, userID, input.RoleID)

	switch {
	case errors.Is(err, membership.ErrNotAMember):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, membership.ErrRoleNotInOrganization):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Uint64("member_id", userID).
			Msg("failed to assign role")

		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Remove removes a member from the organization.
func (s *Service) Remove(c *fiber.Ctx) error {
	userID, ok := parseUserID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": membership.ErrNotAMember.Error()})
	}

	org := auth.CurrentOrganization(c)

	err := membership.Remove(s.db, org.ID, userID)

	switch {
	case errors.Is(err, membership.ErrNotAMember):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Uint64("member_id", userID).
			Msg("failed to remove member")

		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateInvite issues a single-use invite code.
func (s *Service) CreateInvite(c *fiber.Ctx) error {
	input := new(inviteInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	org := auth.CurrentOrganization(c)
	user := auth.CurrentUser(c)

	invite, err := membership.CreateInvite(s.db, org.ID, input.RoleID, user.ID, defaultInviteTTL)

	switch {
	case errors.Is(err, membership.ErrRoleNotInOrganization):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint("organization_id", org.ID).Msg("failed to create invite")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code":       invite.Code,
		"expires_at": invite.ExpiresAt,
	})
}

// RedeemInvite consumes an invite code and joins the authenticated user.
func (s *Service) RedeemInvite(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)

	m, err := membership.RedeemInvite(s.db, c.Params("code"), user.ID)

	switch {
	case errors.Is(err, membership.ErrInviteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, membership.ErrInviteExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, membership.ErrAlreadyMember):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to redeem invite")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(memberResponse(m))
}

func parseUserID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("userID"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

func memberResponse(m *models.Membership) fiber.Map {
	out := fiber.Map{
		"user_id":   m.UserID,
		"joined_at": m.CreatedAt,
	}

	if m.User.ID != 0 {
		out["username"] = m.User.Username
		out["display_name"] = m.User.DisplayName
	}

	if m.Role != nil {
		out["role"] = fiber.Map{
			"id":   m.Role.ID,
			"name": m.Role.Name,
		}
	}

	return out
}
