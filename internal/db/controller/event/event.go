// Package event provides CRUD operations for organization events.
//
// Events are addressed by external UUID in routes. All reads and writes are
// scoped to one organization: an event UUID belonging to a different
// organization is reported as not found.
package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
)

const whereOrgAndExternalID = "organization_id = ? AND external_id = ?"

var (
	// ErrEventNotFound is returned when an event does not exist in the given organization.
	ErrEventNotFound = errors.New("event not found")
	// ErrTitleEmpty is returned when attempting to create/rename an event with an empty title.
	ErrTitleEmpty = errors.New("event title cannot be empty")
	// ErrInvalidTimeRange is returned when the event ends before it starts.
	ErrInvalidTimeRange = errors.New("event end time must be after start time")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Fields holds the writable attributes of an event.
type Fields struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
}

// Patch describes a partial event update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// Create creates a new event in the organization on behalf of the creator.
func Create(db *gorm.DB, organizationID uint, creatorID uint64, f Fields) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if f.Title == "" {
		return nil, ErrTitleEmpty
	}
	if !f.EndsAt.IsZero() && !f.EndsAt.After(f.StartsAt) {
		return nil, ErrInvalidTimeRange
	}

	event := &models.Event{
		ExternalID:     uuid.NewString(),
		OrganizationID: organizationID,
		CreatorID:      creatorID,
		Title:          f.Title,
		Description:    f.Description,
		Location:       f.Location,
		StartsAt:       f.StartsAt,
		EndsAt:         f.EndsAt,
	}

	if err := db.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// GetByExternalID retrieves an event by its external UUID within the organization.
func GetByExternalID(db *gorm.DB, organizationID uint, externalID string) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var event models.Event

	err := db.Where(whereOrgAndExternalID, organizationID, externalID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// List retrieves all events of the organization, soonest start first.
func List(db *gorm.DB, organizationID uint) ([]models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var events []models.Event

	err := db.Where("organization_id = ?", organizationID).
		Order("starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Update applies a partial update to an event within the organization.
func Update(db *gorm.DB, organizationID uint, externalID string, patch Patch) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if patch.Title != nil && *patch.Title == "" {
		return nil, ErrTitleEmpty
	}

	var event models.Event

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(whereOrgAndExternalID, organizationID, externalID).First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}

		if patch.Title != nil {
			event.Title = *patch.Title
		}
		if patch.Description != nil {
			event.Description = *patch.Description
		}
		if patch.Location != nil {
			event.Location = *patch.Location
		}
		if patch.StartsAt != nil {
			event.StartsAt = *patch.StartsAt
		}
		if patch.EndsAt != nil {
			event.EndsAt = *patch.EndsAt
		}

		if !event.EndsAt.IsZero() && !event.EndsAt.After(event.StartsAt) {
			return ErrInvalidTimeRange
		}

		if err := tx.Save(&event).Error; err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// Delete removes an event together with its comments and reviews.
func Delete(db *gorm.DB, organizationID uint, externalID string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var event models.Event

		err := tx.Where(whereOrgAndExternalID, organizationID, externalID).First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Where("event_id = ?", event.ID).
			Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete event comments: %w", err)
		}

		if err := tx.Where("event_id = ?", event.ID).
			Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete event reviews: %w", err)
		}

		if err := tx.Delete(&event).Error; err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}

		return nil
	})
}
