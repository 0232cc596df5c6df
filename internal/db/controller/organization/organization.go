// Package organization provides CRUD and aggregation operations for organizations.
package organization

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
)

var (
	// ErrOrganizationNotFound is returned when an organization does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrOrganizationNameEmpty is returned when attempting to create an organization with an empty name.
	ErrOrganizationNameEmpty = errors.New("organization name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Analytics is the aggregated organization summary served to analytics viewers.
type Analytics struct {
	MemberCount int64 `json:"member_count"`
	RoleCount   int64 `json:"role_count"`
	EventCount  int64 `json:"event_count"`
	ReviewCount int64 `json:"review_count"`
}

// Create creates a new organization owned by the given user.
// The external registry ID is a generated UUID.
func Create(db *gorm.DB, name, description string, ownerID uint64) (*models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrOrganizationNameEmpty
	}

	org := &models.Organization{
		ExternalID:  uuid.NewString(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	if err := db.Create(org).Error; err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// GetByExternalID retrieves an organization by its external registry ID.
func GetByExternalID(db *gorm.DB, externalID string) (*models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var org models.Organization

	err := db.Where("external_id = ?", externalID).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &org, nil
}

// Update changes the organization's name and/or description.
// Nil fields are left unchanged.
func Update(db *gorm.DB, organizationID uint, name, description *string) (*models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name != nil && *name == "" {
		return nil, ErrOrganizationNameEmpty
	}

	var org models.Organization

	err := db.First(&org, organizationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}

	if name != nil {
		org.Name = *name
	}

	if description != nil {
		org.Description = *description
	}

	if err := db.Save(&org).Error; err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return &org, nil
}

// Aggregate computes the analytics summary for an organization.
func Aggregate(db *gorm.DB, organizationID uint) (*Analytics, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out Analytics

	if err := db.Model(&models.Membership{}).
		Where("organization_id = ?", organizationID).
		Count(&out.MemberCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	if err := db.Model(&models.Role{}).
		Where("organization_id = ?", organizationID).
		Count(&out.RoleCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}

	if err := db.Model(&models.Event{}).
		Where("organization_id = ?", organizationID).
		Count(&out.EventCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	if err := db.Model(&models.Review{}).
		Joins("JOIN events ON events.id = reviews.event_id").
		Where("events.organization_id = ?", organizationID).
		Count(&out.ReviewCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	return &out, nil
}
