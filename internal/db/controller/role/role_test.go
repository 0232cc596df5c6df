package role

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
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

func seedOrg(t *testing.T, db *gorm.DB, externalID string) models.Organization {
	t.Helper()

	owner := models.User{Username: "owner-" + externalID, Email: externalID + "@example.com", Active: true}
	require.NoError(t, db.Create(&owner).Error)

	org := models.Organization{ExternalID: externalID, Name: "org " + externalID, OwnerID: owner.ID}
	require.NoError(t, db.Create(&org).Error)

	return org
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	org := seedOrg(t, db, "org-1")

	t.Run("nil database", func(t *testing.T) {
		_, err := Create(nil, org.ID, "admin", "", nil)
		assert.ErrorIs(t, err, ErrDBNil)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := Create(db, org.ID, "", "", nil)
		assert.ErrorIs(t, err, ErrRoleNameEmpty)
	})

	t.Run("unknown permission", func(t *testing.T) {
		_, err := Create(db, org.ID, "bad", "", []string{"NOT_IN_CATALOG"})
		assert.ErrorIs(t, err, auth.ErrUnknownPermission)
	})

	t.Run("successful create with deduplicated permissions", func(t *testing.T) {
		role, err := Create(db, org.ID, "moderator", "keeps the peace",
			[]string{auth.PermViewMembers, auth.PermManageMembers, auth.PermViewMembers})
		require.NoError(t, err)

		assert.Equal(t, "moderator", role.Name)
		assert.ElementsMatch(t,
			[]string{auth.PermViewMembers, auth.PermManageMembers},
			role.PermissionNames())
	})

	t.Run("name conflict is case-insensitive", func(t *testing.T) {
		_, err := Create(db, org.ID, "MODERATOR", "", nil)
		assert.ErrorIs(t, err, ErrRoleNameConflict)
	})

	t.Run("same name allowed in another organization", func(t *testing.T) {
		other := seedOrg(t, db, "org-2")

		_, err := Create(db, other.ID, "moderator", "", nil)
		assert.NoError(t, err)
	})
}

func TestGetAndList(t *testing.T) {
	db := setupTestDB(t)
	org := seedOrg(t, db, "org-1")
	other := seedOrg(t, db, "org-2")

	created, err := Create(db, org.ID, "admin", "", []string{auth.PermManageOrganization})
	require.NoError(t, err)

	t.Run("get loads permissions", func(t *testing.T) {
		role, err := Get(db, org.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{auth.PermManageOrganization}, role.PermissionNames())
	})

	t.Run("cross-organization get is not found", func(t *testing.T) {
		_, err := Get(db, other.ID, created.ID)
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("list is scoped to the organization", func(t *testing.T) {
		roles, err := List(db, org.ID)
		require.NoError(t, err)
		assert.Len(t, roles, 1)

		roles, err = List(db, other.ID)
		require.NoError(t, err)
		assert.Empty(t, roles)
	})
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	org := seedOrg(t, db, "org-1")

	created, err := Create(db, org.ID, "editor", "old", []string{auth.PermViewMembers})
	require.NoError(t, err)

	_, err = Create(db, org.ID, "admin", "", nil)
	require.NoError(t, err)

	strPtr := func(s string) *string { return &s }

	t.Run("partial update keeps unset fields", func(t *testing.T) {
		role, err := Update(db, org.ID, created.ID, Patch{Description: strPtr("new")})
		require.NoError(t, err)

		assert.Equal(t, "editor", role.Name)
		assert.Equal(t, "new", role.Description)
		assert.Equal(t, []string{auth.PermViewMembers}, role.PermissionNames())
	})

	t.Run("permissions replacement", func(t *testing.T) {
		perms := []string{auth.PermManageEvents, auth.PermViewAnalytics}

		role, err := Update(db, org.ID, created.ID, Patch{Permissions: &perms})
		require.NoError(t, err)
		assert.ElementsMatch(t, perms, role.PermissionNames())
	})

	t.Run("rename to taken name conflicts", func(t *testing.T) {
		_, err := Update(db, org.ID, created.ID, Patch{Name: strPtr("Admin")})
		assert.ErrorIs(t, err, ErrRoleNameConflict)
	})

	t.Run("unknown permission rejected", func(t *testing.T) {
		perms := []string{"NOT_IN_CATALOG"}

		_, err := Update(db, org.ID, created.ID, Patch{Permissions: &perms})
		assert.ErrorIs(t, err, auth.ErrUnknownPermission)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := Update(db, org.ID, created.ID+1000, Patch{Description: strPtr("x")})
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	org := seedOrg(t, db, "org-1")

	role, err := Create(db, org.ID, "admin", "", []string{auth.PermManageMembers})
	require.NoError(t, err)

	member := models.User{Username: "bob", Email: "bob@example.com", Active: true}
	require.NoError(t, db.Create(&member).Error)
	require.NoError(t, db.Create(&models.Membership{
		UserID:         member.ID,
		OrganizationID: org.ID,
		RoleID:         &role.ID,
	}).Error)

	service := auth.NewService(db)

	allowed, err := service.HasPermission(member.ID, org.ID, auth.PermManageMembers)
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, Delete(db, org.ID, role.ID))

	t.Run("membership survives without the role", func(t *testing.T) {
		var m models.Membership

		require.NoError(t, db.Where("user_id = ?", member.ID).First(&m).Error)
		assert.Nil(t, m.RoleID)
	})

	t.Run("permission assignments are gone", func(t *testing.T) {
		var count int64

		require.NoError(t, db.Model(&models.RolePermission{}).
			Where("role_id = ?", role.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("next check reflects the deletion immediately", func(t *testing.T) {
		allowed, err := service.HasPermission(member.ID, org.ID, auth.PermManageMembers)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("double delete is not found", func(t *testing.T) {
		assert.ErrorIs(t, Delete(db, org.ID, role.ID), ErrRoleNotFound)
	})
}
