// Package account provides handlers for registration, login, logout and the
// current-user endpoint. It is the credential layer: it issues and destroys
// sessions but makes no authorization decisions beyond requiring one.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/handler"
	"github.com/guildpoint/guildpoint/internal/web/session"
)

const (
	// Path is the base path for account routes.
	Path = handler.APIRootPath + "/auth"

	// RouteRegister is the route for self-service registration.
	RouteRegister = Path + "/register"
	// RouteLogin is the route for local login.
	RouteLogin = Path + "/login"
	// RouteLogout is the route for logout.
	RouteLogout = Path + "/logout"
	// RouteMe is the route returning the authenticated user.
	RouteMe = Path + "/me"
	// RoutePassword is the route for changing the local password.
	RoutePassword = Path + "/password"
	// RouteOIDCLogin is the route starting the OIDC flow.
	RouteOIDCLogin = Path + "/oidc/login"
	// RouteOIDCCallback is the OIDC redirect target.
	RouteOIDCCallback = Path + "/oidc/callback"

	// stateCookie carries the OIDC CSRF state between login and callback.
	stateCookie = "oidc_state"
)

// Service is the account handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	local     *auth.LocalProvider
	oidc      *auth.OIDCProvider
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
	s.local = auth.NewLocalProvider(db)
	s.validator = validator.New()

	if cfg.Auth.OIDC.Enabled {
		oidcProvider, err := auth.NewOIDCProvider(context.Background(), &auth.OIDCConfig{
			Enabled:      true,
			ProviderURL:  cfg.Auth.OIDC.ProviderURL,
			ClientID:     cfg.Auth.OIDC.ClientID,
			ClientSecret: cfg.Auth.OIDC.ClientSecret,
			RedirectURL:  cfg.Auth.OIDC.RedirectURL,
			Scopes:       cfg.Auth.OIDC.Scopes,
		}, db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize OIDC provider")
			return
		}

		s.oidc = oidcProvider
	}

	app.Post(RouteRegister, s.Register)
	app.Post(RouteLogin, s.Login)
	app.Post(RouteLogout, s.Logout)
	app.Get(RouteMe,
		auth.RequireSession(db),
		s.Me,
	)
	app.Post(RoutePassword,
		auth.RequireSession(db),
		s.ChangePassword,
	)
	app.Get(RouteOIDCLogin, s.OIDCLogin)
	app.Get(RouteOIDCCallback, s.OIDCCallback)
}

// Register handles self-service registration of local accounts.
func (s *Service) Register(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled || !s.cfg.Auth.LocalDB.RegistrationOpen {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "registration is closed"})
	}

	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	user, err := s.local.CreateUser(input.Username, input.Email, input.Password, input.DisplayName)
	if errors.Is(err, auth.ErrUserNameOrEmailExists) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to register user")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.Status(fiber.StatusCreated).JSON(userResponse(user))
}

// Login handles local username/password login and issues a session.
func (s *Service) Login(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "local login is disabled"})
	}

	input := new(loginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	user, err := s.local.Authenticate(input.Username, input.Password)
	if err != nil {
		// one message for every failure mode, no account probing
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "invalid username or password"})
	}

	if err := s.issueSession(c, user); err != nil {
		log.Error().Err(err).Msg("failed to issue session")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(userResponse(user))
}

// Logout destroys the current session, if any.
func (s *Service) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := session.Destroy(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to destroy session")
		}
	}

	c.ClearCookie(session.CookieName)

	return c.SendStatus(fiber.StatusNoContent)
}

// Me returns the authenticated user.
func (s *Service) Me(c *fiber.Ctx) error {
	return c.JSON(userResponse(auth.CurrentUser(c)))
}

// ChangePassword changes the authenticated user's local password.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	input := new(changePasswordInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.MsgInvalidBody})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": handler.MsgValidationPrefix + err.Error()})
	}

	user := auth.CurrentUser(c)

	err := s.local.ChangePassword(user.ID, input.OldPassword, input.NewPassword)

	switch {
	case errors.Is(err, auth.ErrInvalidOldPassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrUserNotFound):
		// OIDC-provisioned accounts have no local password to change
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "account has no local password"})
	case err != nil:
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to change password")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// OIDCLogin redirects the caller to the identity provider.
func (s *Service) OIDCLogin(c *fiber.Ctx) error {
	if s.oidc == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "oidc login is disabled"})
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate oidc state token")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		HTTPOnly: true,
		Expires:  time.Now().Add(10 * time.Minute),
	})

	return c.Redirect(s.oidc.GetAuthURL(state))
}

// OIDCCallback completes the OIDC flow and issues a session.
func (s *Service) OIDCCallback(c *fiber.Ctx) error {
	if s.oidc == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "oidc login is disabled"})
	}

	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid oidc state"})
	}

	c.ClearCookie(stateCookie)

	user, err := s.oidc.HandleCallback(c.Context(), c.Query("code"))
	if err != nil {
		log.Error().Err(err).Msg("oidc callback failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "oidc login failed"})
	}

	if err := s.issueSession(c, user); err != nil {
		log.Error().Err(err).Msg("failed to issue session")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": handler.MsgInternalError})
	}

	return c.JSON(userResponse(user))
}

func (s *Service) issueSession(c *fiber.Ctx, user *models.User) error {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err
	}

	data := session.Data{User: *user}
	if err := data.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Domain:   s.cfg.Webserver.Domain,
		HTTPOnly: true,
		Expires:  time.Now().Add(s.cfg.Webserver.Session.ExpiryTime),
	})

	return nil
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"display_name": user.DisplayName,
	}
}
