package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Role{},
		&models.RolePermission{},
		&models.Membership{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// fixture is the standard cast used by the permission tests:
// alice owns the organization, bob is a member with the admin role,
// carol is a member without a role, dave is not a member at all.
type fixture struct {
	org   models.Organization
	alice models.User
	bob   models.User
	carol models.User
	dave  models.User
	admin models.Role
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	var f fixture

	f.alice = models.User{Username: "alice", Email: "alice@example.com", Active: true}
	f.bob = models.User{Username: "bob", Email: "bob@example.com", Active: true}
	f.carol = models.User{Username: "carol", Email: "carol@example.com", Active: true}
	f.dave = models.User{Username: "dave", Email: "dave@example.com", Active: true}

	for _, u := range []*models.User{&f.alice, &f.bob, &f.carol, &f.dave} {
		require.NoError(t, db.Create(u).Error)
	}

	f.org = models.Organization{
		ExternalID: "11111111-1111-1111-1111-111111111111",
		Name:       "Chess Club",
		OwnerID:    f.alice.ID,
	}
	require.NoError(t, db.Create(&f.org).Error)

	f.admin = models.Role{
		OrganizationID: f.org.ID,
		Name:           "admin",
		Permissions: []models.RolePermission{
			{Permission: PermManageOrganization},
			{Permission: PermViewMembers},
			{Permission: PermManageMembers},
		},
	}
	require.NoError(t, db.Create(&f.admin).Error)

	require.NoError(t, db.Create(&models.Membership{
		UserID:         f.bob.ID,
		OrganizationID: f.org.ID,
		RoleID:         &f.admin.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Membership{
		UserID:         f.carol.ID,
		OrganizationID: f.org.ID,
	}).Error)

	return f
}

func TestResolveMembership(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	testCases := []struct {
		name           string
		userID         uint64
		expectedStatus MembershipStatus
		expectRole     bool
	}{
		{name: "owner", userID: f.alice.ID, expectedStatus: StatusOwner},
		{name: "member with role", userID: f.bob.ID, expectedStatus: StatusMember, expectRole: true},
		{name: "member without role", userID: f.carol.ID, expectedStatus: StatusMember},
		{name: "non-member", userID: f.dave.ID, expectedStatus: StatusNotAMember},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolution, err := service.ResolveMembership(tc.userID, f.org.ID)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedStatus, resolution.Status)

			if tc.expectRole {
				require.NotNil(t, resolution.Role)
				assert.Equal(t, f.admin.ID, resolution.Role.ID)
			} else {
				assert.Nil(t, resolution.Role)
			}
		})
	}
}

func TestResolveMembershipUnknownOrganization(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	_, err := service.ResolveMembership(f.alice.ID, f.org.ID+1000)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestHasPermission(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	testCases := []struct {
		name       string
		userID     uint64
		permission string
		allowed    bool
	}{
		{
			name:       "owner bypass grants held catalog permission",
			userID:     f.alice.ID,
			permission: PermManageOrganization,
			allowed:    true,
		},
		{
			name:       "owner bypass grants permission no role holds",
			userID:     f.alice.ID,
			permission: PermViewAnalytics,
			allowed:    true,
		},
		{
			name:       "member role grants assigned permission",
			userID:     f.bob.ID,
			permission: PermManageMembers,
			allowed:    true,
		},
		{
			name:       "member role denies unassigned permission",
			userID:     f.bob.ID,
			permission: PermManageEvents,
			allowed:    false,
		},
		{
			name:       "member without role is denied",
			userID:     f.carol.ID,
			permission: PermViewMembers,
			allowed:    false,
		},
		{
			name:       "non-member is denied",
			userID:     f.dave.ID,
			permission: PermViewMembers,
			allowed:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := service.HasPermission(tc.userID, f.org.ID, tc.permission)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}

	t.Run("repeated checks without mutation agree", func(t *testing.T) {
		for _, tc := range testCases {
			first, err := service.HasPermission(tc.userID, f.org.ID, tc.permission)
			require.NoError(t, err)

			second, err := service.HasPermission(tc.userID, f.org.ID, tc.permission)
			require.NoError(t, err)

			assert.Equal(t, first, second, tc.name)
		}
	})
}

func TestHasPermissionUnknownOrganizationIsErrorNotDenial(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	allowed, err := service.HasPermission(f.bob.ID, f.org.ID+1000, PermViewMembers)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
	assert.False(t, allowed)
}

func TestHasPermissionIsScopedToOrganization(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	// Same users, different organization: nobody except its owner gets anything.
	other := models.Organization{
		ExternalID: "22222222-2222-2222-2222-222222222222",
		Name:       "Book Club",
		OwnerID:    f.dave.ID,
	}
	require.NoError(t, db.Create(&other).Error)

	allowed, err := service.HasPermission(f.bob.ID, other.ID, PermManageMembers)
	require.NoError(t, err)
	assert.False(t, allowed, "role in one organization must not leak into another")

	allowed, err = service.HasPermission(f.dave.ID, other.ID, PermManageMembers)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestHasAnyPermission(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	allowed, err := service.HasAnyPermission(f.bob.ID, f.org.ID,
		[]string{PermManageEvents, PermViewMembers})
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = service.HasAnyPermission(f.bob.ID, f.org.ID,
		[]string{PermManageEvents, PermViewAnalytics})
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = service.HasAnyPermission(f.bob.ID, f.org.ID, nil)
	require.NoError(t, err)
	assert.False(t, allowed, "empty permission list never matches")
}

func TestEffectivePermissions(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	perms, err := service.EffectivePermissions(f.alice.ID, f.org.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, Permissions(), perms, "owner holds the full catalog")

	perms, err = service.EffectivePermissions(f.bob.ID, f.org.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{PermManageOrganization, PermViewMembers, PermManageMembers}, perms)

	perms, err = service.EffectivePermissions(f.carol.ID, f.org.ID)
	require.NoError(t, err)
	assert.Empty(t, perms, "role-less member has the empty permission set")

	perms, err = service.EffectivePermissions(f.dave.ID, f.org.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestValidateStoredPermissions(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	service := NewService(db)

	require.NoError(t, service.ValidateStoredPermissions())

	// A row referencing a name outside the catalog must fail validation.
	require.NoError(t, db.Create(&models.RolePermission{
		RoleID:     f.admin.ID,
		Permission: "LAUNCH_MISSILES",
	}).Error)

	assert.ErrorIs(t, service.ValidateStoredPermissions(), ErrUnknownPermission)
}

func TestPermissionCatalog(t *testing.T) {
	assert.True(t, ValidPermission(PermViewOrganization))
	assert.True(t, ValidPermission(PermManageEvents))
	assert.False(t, ValidPermission("view_organization"), "catalog names are case-sensitive")
	assert.False(t, ValidPermission(""))

	assert.Len(t, Permissions(), len(catalog))
}
