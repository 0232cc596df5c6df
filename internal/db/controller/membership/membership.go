// Package membership provides operations on the user-organization relationship,
// including invite issuance and redemption.
package membership

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/uniuri"
)

const (
	whereUserAndOrg = "user_id = ? AND organization_id = ?"

	// inviteCodeLen is the length of generated invite codes.
	inviteCodeLen = 20
)

var (
	// ErrAlreadyMember is returned when the user already holds a membership in the organization.
	ErrAlreadyMember = errors.New("user is already a member of the organization")
	// ErrNotAMember is returned when no membership exists for the user in the organization.
	ErrNotAMember = errors.New("user is not a member of the organization")
	// ErrRoleNotInOrganization is returned when the referenced role belongs to a
	// different organization or does not exist.
	ErrRoleNotInOrganization = errors.New("role does not belong to the organization")
	// ErrInviteNotFound is returned when no invite matches the given code.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteExpired is returned when redeeming an invite past its expiry time.
	ErrInviteExpired = errors.New("invite has expired")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Add creates a membership for the user in the organization, optionally with
// a role. The role, when given, must belong to the same organization. The
// duplicate check and the insert run in one transaction so a concurrent add
// surfaces as ErrAlreadyMember instead of a constraint violation.
func Add(db *gorm.DB, organizationID uint, userID uint64, roleID *uint) (*models.Membership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	m := &models.Membership{
		UserID:         userID,
		OrganizationID: organizationID,
		RoleID:         roleID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkRoleScope(tx, organizationID, roleID); err != nil {
			return err
		}

		var existing models.Membership

		err := tx.Where(whereUserAndOrg, userID, organizationID).First(&existing).Error
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing membership: %w", err)
		}

		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// AssignRole re-assigns the member's role. A nil roleID clears the role,
// leaving a valid "member with no role" membership.
func AssignRole(db *gorm.DB, organizationID uint, userID uint64, roleID *uint) error {
	if db == nil {
		return ErrDBNil
	}

	if err := checkRoleScope(db, organizationID, roleID); err != nil {
		return err
	}

	result := db.Model(&models.Membership{}).
		Where(whereUserAndOrg, userID, organizationID).
		Update("role_id", roleID)
	if result.Error != nil {
		return fmt.Errorf("failed to assign role: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotAMember
	}

	return nil
}

// Remove deletes the user's membership in the organization.
func Remove(db *gorm.DB, organizationID uint, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(whereUserAndOrg, userID, organizationID).
		Delete(&models.Membership{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove membership: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotAMember
	}

	return nil
}

// List retrieves all memberships of the organization with user and role loaded.
func List(db *gorm.DB, organizationID uint) ([]models.Membership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var memberships []models.Membership

	err := db.Preload("User").Preload("Role.Permissions").
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

// CreateInvite issues a single-use invite code for the organization.
func CreateInvite(
	db *gorm.DB,
	organizationID uint,
	roleID *uint,
	createdBy uint64,
	ttl time.Duration,
) (*models.Invite, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := checkRoleScope(db, organizationID, roleID); err != nil {
		return nil, err
	}

	invite := &models.Invite{
		Code:           uniuri.NewLen(inviteCodeLen),
		OrganizationID: organizationID,
		RoleID:         roleID,
		CreatedBy:      createdBy,
		ExpiresAt:      time.Now().Add(ttl),
	}

	if err := db.Create(invite).Error; err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	return invite, nil
}

// RedeemInvite consumes an invite code and creates the membership it grants.
// Consuming the code and creating the membership happen in one transaction.
func RedeemInvite(db *gorm.DB, code string, userID uint64) (*models.Membership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var membership *models.Membership

	err := db.Transaction(func(tx *gorm.DB) error {
		var invite models.Invite

		err := tx.Where("code = ?", code).First(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load invite: %w", err)
		}

		if invite.Expired(time.Now()) {
			return ErrInviteExpired
		}

		var existing models.Membership

		err = tx.Where(whereUserAndOrg, userID, invite.OrganizationID).First(&existing).Error
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing membership: %w", err)
		}

		membership = &models.Membership{
			UserID:         userID,
			OrganizationID: invite.OrganizationID,
			RoleID:         invite.RoleID,
		}

		if err := tx.Create(membership).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		if err := tx.Delete(&invite).Error; err != nil {
			return fmt.Errorf("failed to consume invite: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// checkRoleScope verifies that roleID, when set, names a role of the organization.
func checkRoleScope(db *gorm.DB, organizationID uint, roleID *uint) error {
	if roleID == nil {
		return nil
	}

	var count int64

	err := db.Model(&models.Role{}).
		Where("organization_id = ? AND id = ?", organizationID, *roleID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check role scope: %w", err)
	}

	if count == 0 {
		return ErrRoleNotInOrganization
	}

	return nil
}
