package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web/session"
)

// The request gate is a chain of discrete middleware stages:
//
//	RequireSession -> ResolveOrganization -> RequirePermission... -> handler
//
// Each stage is independently composable so routes can skip stages they do
// not need: public routes use none of them, and routes without an
// organization scope skip ResolveOrganization. Permission denials are
// reported with a generic message so callers cannot probe the role structure.

const (
	// LocalsUser is the fiber.Locals key holding the authenticated *models.User.
	LocalsUser = "currentUser"
	// LocalsOrganization is the fiber.Locals key holding the resolved *models.Organization.
	LocalsOrganization = "organization"

	// OrganizationParam is the route parameter carrying the organization's external ID.
	OrganizationParam = "orgID"

	msgUnauthorized  = "authentication required"
	msgForbidden     = "insufficient permissions"
	msgOrgNotFound   = "organization not found"
	msgCheckFailed   = "permission check unavailable"
	msgResourceError = "failed to load resource"
)

// CurrentUser returns the authenticated user placed in the context by
// RequireSession, or nil when the request did not pass that stage.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalsUser).(*models.User)
	return user
}

// CurrentOrganization returns the organization placed in the context by
// ResolveOrganization, or nil when the request did not pass that stage.
func CurrentOrganization(c *fiber.Ctx) *models.Organization {
	org, _ := c.Locals(LocalsOrganization).(*models.Organization)
	return org
}

// RequireSession authenticates the request from its session cookie.
// It terminates the request with 401 when no valid credential is present and
// stores the authenticated user in fiber.Locals otherwise. The user row is
// re-read on every request so a deactivated account loses its live sessions
// immediately, not when they expire.
func RequireSession(db *gorm.DB) fiber.Handler {
	users := NewLocalProvider(db)

	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		if sessionData.User.ID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		user, err := users.GetUserByID(sessionData.User.ID)
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).
				Msg("failed to load session user")

			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msgCheckFailed})
		}

		if !user.Active {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		c.Locals(LocalsUser, user)

		return c.Next()
	}
}

// ResolveOrganization looks up the organization by the external ID route
// parameter and stores it in fiber.Locals. Unknown IDs terminate the request
// with 404.
func ResolveOrganization(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		externalID := c.Params(OrganizationParam)
		if externalID == "" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgOrgNotFound})
		}

		var org models.Organization

		err := db.Where("external_id = ?", externalID).First(&org).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgOrgNotFound})
		}

		if err != nil {
			log.Error().Err(err).Str("organization", externalID).Msg("failed to resolve organization")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msgCheckFailed})
		}

		c.Locals(LocalsOrganization, &org)

		return c.Next()
	}
}

// RequirePermission creates middleware that requires a catalog permission
// within the organization resolved by ResolveOrganization. Denials terminate
// with 403; infrastructure failures terminate with 503 and are never reported
// as a denial.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		org := CurrentOrganization(c)

		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		if org == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgOrgNotFound})
		}

		allowed, err := authService.HasPermission(user.ID, org.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Uint("organization_id", org.ID).
				Str("permission", permission).Msg("failed to check permission")

			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msgCheckFailed})
		}

		if !allowed {
			log.Warn().Uint64("user_id", user.ID).Uint("organization_id", org.ID).
				Str("permission", permission).Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msgForbidden})
		}

		return c.Next()
	}
}

// ResourceLoader loads the creator-owned resource a route operates on,
// typically from a route parameter. Returning gorm.ErrRecordNotFound maps to
// a 404 response.
type ResourceLoader func(c *fiber.Ctx) (CreatorOwned, error)

// RequirePermissionOrCreator allows the request when the user created the
// resource OR holds the given permission in the resolved organization. The
// composition rule is declared per route; this middleware implements the OR
// form used by event management actions.
func RequirePermissionOrCreator(authService *Service, permission string, load ResourceLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		org := CurrentOrganization(c)

		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		if org == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgOrgNotFound})
		}

		resource, err := load(c)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgResourceError})
		}

		if err != nil {
			log.Error().Err(err).Msg("failed to load resource for ownership check")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msgCheckFailed})
		}

		if IsCreator(user.ID, resource) {
			return c.Next()
		}

		allowed, err := authService.HasPermission(user.ID, org.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Uint("organization_id", org.ID).
				Str("permission", permission).Msg("failed to check permission")

			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msgCheckFailed})
		}

		if !allowed {
			log.Warn().Uint64("user_id", user.ID).Uint("organization_id", org.ID).
				Str("permission", permission).Msg("user is not creator and lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msgForbidden})
		}

		return c.Next()
	}
}

// RequireCreator allows the request only when the user created the resource.
// Used for resource types with no role concept at all (comments, reviews).
func RequireCreator(load ResourceLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		resource, err := load(c)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgResourceError})
		}

		if err != nil {
			log.Error().Err(err).Msg("failed to load resource for ownership check")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msgCheckFailed})
		}

		if !IsCreator(user.ID, resource) {
			log.Warn().Uint64("user_id", user.ID).Msg("user is not the resource creator")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msgForbidden})
		}

		return c.Next()
	}
}
