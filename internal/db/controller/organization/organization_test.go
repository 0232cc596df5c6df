package organization

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
		&models.Event{},
		&models.Review{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedOwner(t *testing.T, db *gorm.DB) models.User {
	t.Helper()

	owner := models.User{Username: "owner", Email: "owner@example.com", Active: true}
	require.NoError(t, db.Create(&owner).Error)

	return owner
}

func TestCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db)

	t.Run("nil database", func(t *testing.T) {
		_, err := Create(nil, "Chess Club", "", owner.ID)
		assert.ErrorIs(t, err, ErrDBNil)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := Create(db, "", "", owner.ID)
		assert.ErrorIs(t, err, ErrOrganizationNameEmpty)
	})

	t.Run("create assigns an external id", func(t *testing.T) {
		org, err := Create(db, "Chess Club", "blitz on fridays", owner.ID)
		require.NoError(t, err)
		require.NotEmpty(t, org.ExternalID)
		assert.Equal(t, owner.ID, org.OwnerID)

		got, err := GetByExternalID(db, org.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, org.ID, got.ID)
	})

	t.Run("unknown external id", func(t *testing.T) {
		_, err := GetByExternalID(db, "no-such-org")
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
	})
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db)

	org, err := Create(db, "Chess Club", "old", owner.ID)
	require.NoError(t, err)

	strPtr := func(s string) *string { return &s }

	t.Run("partial update", func(t *testing.T) {
		updated, err := Update(db, org.ID, nil, strPtr("new"))
		require.NoError(t, err)
		assert.Equal(t, "Chess Club", updated.Name)
		assert.Equal(t, "new", updated.Description)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := Update(db, org.ID, strPtr(""), nil)
		assert.ErrorIs(t, err, ErrOrganizationNameEmpty)
	})

	t.Run("unknown organization", func(t *testing.T) {
		_, err := Update(db, org.ID+1000, strPtr("x"), nil)
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
	})
}

func TestAggregate(t *testing.T) {
	db := setupTestDB(t)
	owner := seedOwner(t, db)

	org, err := Create(db, "Chess Club", "", owner.ID)
	require.NoError(t, err)

	other, err := Create(db, "Book Club", "", owner.ID)
	require.NoError(t, err)

	member := models.User{Username: "bob", Email: "bob@example.com", Active: true}
	require.NoError(t, db.Create(&member).Error)
	require.NoError(t, db.Create(&models.Membership{
		UserID:         member.ID,
		OrganizationID: org.ID,
	}).Error)

	require.NoError(t, db.Create(&models.Role{OrganizationID: org.ID, Name: "admin"}).Error)

	event := models.Event{
		ExternalID:     "ev-1",
		OrganizationID: org.ID,
		CreatorID:      owner.ID,
		Title:          "Blitz Night",
	}
	require.NoError(t, db.Create(&event).Error)
	require.NoError(t, db.Create(&models.Review{
		EventID:   event.ID,
		CreatorID: member.ID,
		Rating:    5,
	}).Error)

	// noise in another organization must not be counted
	otherEvent := models.Event{
		ExternalID:     "ev-2",
		OrganizationID: other.ID,
		CreatorID:      owner.ID,
		Title:          "Reading Circle",
	}
	require.NoError(t, db.Create(&otherEvent).Error)

	summary, err := Aggregate(db, org.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, summary.MemberCount)
	assert.EqualValues(t, 1, summary.RoleCount)
	assert.EqualValues(t, 1, summary.EventCount)
	assert.EqualValues(t, 1, summary.ReviewCount)

	empty, err := Aggregate(db, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, empty.EventCount)
	assert.EqualValues(t, 0, empty.ReviewCount)
}
