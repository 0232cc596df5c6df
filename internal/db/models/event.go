package models

import "time"

// Event represents a community event hosted by an organization.
// The creator always retains permission to modify or delete the event,
// independent of any role evaluation (creator-ownership fallback).
type Event struct {
	// ID is the unique identifier for the event.
	ID uint64 `gorm:"primaryKey"`
	// ExternalID is the stable external-facing identifier (UUID) used in routes.
	ExternalID string `gorm:"uniqueIndex;size:36;not null"`
	// OrganizationID is the organization hosting the event.
	OrganizationID uint `gorm:"column:organization_id;not null;index"`
	// Organization is the hosting organization (loaded via foreign key).
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	// CreatorID is the user who created the event.
	CreatorID uint64 `gorm:"column:creator_id;not null;index"`
	// Title is the event title.
	Title string `gorm:"size:200;not null"`
	// Description is the event description.
	Description string `gorm:"size:2000"`
	// Location is the venue or online location of the event.
	Location string `gorm:"size:255"`
	// StartsAt is when the event begins.
	StartsAt time.Time
	// EndsAt is when the event ends.
	EndsAt time.Time
	// CreatedAt is the timestamp when the event was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the event was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Event model.
func (Event) TableName() string {
	return "events"
}

// OwnerUserID returns the creator's user ID for ownership-fallback checks.
func (e *Event) OwnerUserID() uint64 {
	return e.CreatorID
}
