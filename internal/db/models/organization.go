package models

import "time"

// Organization represents a community organization (tenant).
// An organization owns its roles and memberships and has exactly one owner.
// The owner implicitly holds every permission in the catalog; this bypass is
// enforced by the permission evaluator and must never be circumvented.
type Organization struct {
	// ID is the unique internal identifier for the organization.
	ID uint `gorm:"primaryKey"`
	// ExternalID is the stable external-facing identifier (UUID) used in routes.
	ExternalID string `gorm:"uniqueIndex;size:36;not null"`
	// Name is the display name of the organization.
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable description of the organization.
	Description string `gorm:"size:255"`
	// OwnerID is the ID of the user who owns this organization.
	OwnerID uint64 `gorm:"column:owner_id;not null;index"`
	// Owner is the owning user (loaded via foreign key).
	Owner User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:RESTRICT"`
	// CreatedAt is the timestamp when the organization was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the organization was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Organization model.
func (Organization) TableName() string {
	return "organizations"
}
