package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
	websess "github.com/guildpoint/guildpoint/internal/web/session"
)

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func initSessionStore() {
	websess.Init(&testStorage{data: make(map[string][]byte)})
}

// issueTestSession writes a session for the user and returns its cookie value.
func issueTestSession(t *testing.T, user models.User) string {
	t.Helper()

	sessionID, err := websess.GenerateSessionID()
	require.NoError(t, err)

	data := websess.Data{User: user}
	require.NoError(t, data.Write(sessionID, time.Minute))

	return sessionID
}

func doRequest(t *testing.T, app *fiber.App, method, target, sessionID string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: websess.CookieName, Value: sessionID})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestRequireSession(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	initSessionStore()

	app := fiber.New()
	app.Get("/me", RequireSession(db), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": CurrentUser(c).ID})
	})

	t.Run("no cookie", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown session", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/me", "bogus")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("session for a deleted user", func(t *testing.T) {
		ghost := models.User{ID: 9999, Username: "ghost", Active: true}
		resp := doRequest(t, app, http.MethodGet, "/me", issueTestSession(t, ghost))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid session", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/me", issueTestSession(t, f.bob))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("deactivation cuts off live sessions", func(t *testing.T) {
		sessionID := issueTestSession(t, f.carol)

		resp := doRequest(t, app, http.MethodGet, "/me", sessionID)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.NoError(t, db.Model(&models.User{}).
			Where("id = ?", f.carol.ID).
			Update("active", false).Error)

		resp = doRequest(t, app, http.MethodGet, "/me", sessionID)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestResolveOrganization(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	initSessionStore()

	app := fiber.New()
	app.Get("/orgs/:orgID", ResolveOrganization(db), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"name": CurrentOrganization(c).Name})
	})

	resp := doRequest(t, app, http.MethodGet, "/orgs/"+f.org.ExternalID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet,
		"/orgs/99999999-9999-9999-9999-999999999999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequirePermissionGate(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	initSessionStore()

	service := NewService(db)

	app := fiber.New()
	app.Get("/orgs/:orgID/members",
		RequireSession(db),
		ResolveOrganization(db),
		RequirePermission(service, PermViewMembers),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	target := "/orgs/" + f.org.ExternalID + "/members"

	testCases := []struct {
		name           string
		user           *models.User
		expectedStatus int
	}{
		{name: "anonymous", user: nil, expectedStatus: http.StatusUnauthorized},
		{name: "owner bypass", user: &f.alice, expectedStatus: http.StatusOK},
		{name: "member with granting role", user: &f.bob, expectedStatus: http.StatusOK},
		{name: "member without role", user: &f.carol, expectedStatus: http.StatusForbidden},
		{name: "non-member", user: &f.dave, expectedStatus: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var sessionID string
			if tc.user != nil {
				sessionID = issueTestSession(t, *tc.user)
			}

			resp := doRequest(t, app, http.MethodGet, target, sessionID)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("unknown organization is 404 before any check", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet,
			"/orgs/99999999-9999-9999-9999-999999999999/members",
			issueTestSession(t, f.alice))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRequirePermissionOrCreator(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	initSessionStore()

	service := NewService(db)

	// carol created the event but holds no role; bob's role lacks MANAGE_EVENTS.
	event := &models.Event{
		ExternalID:     "33333333-3333-3333-3333-333333333333",
		OrganizationID: f.org.ID,
		CreatorID:      f.carol.ID,
		Title:          "Weekly Blitz",
	}

	loader := func(c *fiber.Ctx) (CreatorOwned, error) {
		if c.Params("eventID") != event.ExternalID {
			return nil, gorm.ErrRecordNotFound
		}

		return event, nil
	}

	app := fiber.New()
	app.Delete("/orgs/:orgID/events/:eventID",
		RequireSession(db),
		ResolveOrganization(db),
		RequirePermissionOrCreator(service, PermManageEvents, loader),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) },
	)

	target := "/orgs/" + f.org.ExternalID + "/events/" + event.ExternalID

	testCases := []struct {
		name           string
		user           models.User
		expectedStatus int
	}{
		{name: "creator without permission", user: f.carol, expectedStatus: http.StatusNoContent},
		{name: "owner bypass without creatorship", user: f.alice, expectedStatus: http.StatusNoContent},
		{name: "member lacking both paths", user: f.bob, expectedStatus: http.StatusForbidden},
		{name: "non-member", user: f.dave, expectedStatus: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodDelete, target, issueTestSession(t, tc.user))
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("missing resource", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete,
			"/orgs/"+f.org.ExternalID+"/events/missing",
			issueTestSession(t, f.alice))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRequireCreator(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	initSessionStore()

	comment := &models.Comment{ID: 7, EventID: 1, CreatorID: f.carol.ID, Body: "gg"}

	loader := func(c *fiber.Ctx) (CreatorOwned, error) {
		if c.Params("commentID") != "7" {
			return nil, gorm.ErrRecordNotFound
		}

		return comment, nil
	}

	app := fiber.New()
	app.Delete("/comments/:commentID",
		RequireSession(db),
		RequireCreator(loader),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) },
	)

	t.Run("creator", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, "/comments/7", issueTestSession(t, f.carol))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("owner has no special path here", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, "/comments/7", issueTestSession(t, f.alice))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing resource", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, "/comments/8", issueTestSession(t, f.carol))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestIsCreator(t *testing.T) {
	event := &models.Event{CreatorID: 42}

	assert.True(t, IsCreator(42, event))
	assert.False(t, IsCreator(43, event))
	assert.False(t, IsCreator(42, nil))
}
