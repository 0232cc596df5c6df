// Package role provides CRUD operations for organization-scoped roles.
//
// Roles bundle catalog permissions and are assigned to memberships. Every
// operation is scoped to one organization: a role ID from another
// organization behaves exactly like a missing role, so callers cannot probe
// other tenants' role structure.
package role

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/db/models"
)

const whereOrgAndID = "organization_id = ? AND id = ?"

var (
	// ErrRoleNotFound is returned when a role does not exist in the given organization.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when attempting to create/rename a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleNameConflict is returned when the role name already exists in the
	// organization. Uniqueness is case-insensitive.
	ErrRoleNameConflict = errors.New("role name already exists in organization")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Patch describes a partial role update. Nil fields are left unchanged.
// A non-nil Permissions replaces the entire permission set.
type Patch struct {
	Name        *string
	Description *string
	Permissions *[]string
}

// Create creates a new role in the organization with the given permission set.
func Create(db *gorm.DB, organizationID uint, name, description string, permissions []string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	if err := validatePermissions(permissions); err != nil {
		return nil, err
	}

	role := &models.Role{
		OrganizationID: organizationID,
		Name:           name,
		Description:    description,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, organizationID, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrRoleNameConflict
		}

		if err := tx.Create(role).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		return replacePermissions(tx, role.ID, permissions)
	})
	if err != nil {
		return nil, err
	}

	return Get(db, organizationID, role.ID)
}

// Get retrieves a role by ID within the organization, permissions included.
func Get(db *gorm.DB, organizationID, roleID uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role

	err := db.Preload("Permissions").
		Where(whereOrgAndID, organizationID, roleID).
		First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// List retrieves all roles of the organization in insertion order.
func List(db *gorm.DB, organizationID uint) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role

	err := db.Preload("Permissions").
		Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	return roles, nil
}

// Update applies a partial update to a role within the organization.
// A role belonging to a different organization is reported as not found.
func Update(db *gorm.DB, organizationID, roleID uint, patch Patch) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if patch.Name != nil && *patch.Name == "" {
		return nil, ErrRoleNameEmpty
	}

	if patch.Permissions != nil {
		if err := validatePermissions(*patch.Permissions); err != nil {
			return nil, err
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var role models.Role

		err := tx.Where(whereOrgAndID, organizationID, roleID).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		if err != nil {
			return err
		}

		if patch.Name != nil && *patch.Name != role.Name {
			taken, err := nameTaken(tx, organizationID, *patch.Name, roleID)
			if err != nil {
				return err
			}
			if taken {
				return ErrRoleNameConflict
			}

			role.Name = *patch.Name
		}

		if patch.Description != nil {
			role.Description = *patch.Description
		}

		if err := tx.Save(&role).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		if patch.Permissions != nil {
			if err := tx.Where("role_id = ?", roleID).
				Delete(&models.RolePermission{}).Error; err != nil {
				return fmt.Errorf("failed to clear role permissions: %w", err)
			}

			return replacePermissions(tx, roleID, *patch.Permissions)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(db, organizationID, roleID)
}

// Delete removes a role and clears the role reference on every membership
// that held it. Affected memberships become "member with no role"; they are
// never deleted. Both steps happen in one transaction.
func Delete(db *gorm.DB, organizationID, roleID uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var role models.Role

		err := tx.Where(whereOrgAndID, organizationID, roleID).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Membership{}).
			Where("role_id = ?", roleID).
			Update("role_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear memberships: %w", err)
		}

		if err := tx.Where("role_id = ?", roleID).
			Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete role permissions: %w", err)
		}

		if err := tx.Delete(&role).Error; err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}

		return nil
	})
}

// nameTaken reports whether another role in the organization already uses the
// name, comparing case-insensitively. excludeID skips the role being renamed.
func nameTaken(tx *gorm.DB, organizationID uint, name string, excludeID uint) (bool, error) {
	var count int64

	query := tx.Model(&models.Role{}).
		Where("organization_id = ? AND LOWER(name) = LOWER(?)", organizationID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check role name: %w", err)
	}

	return count > 0, nil
}

func validatePermissions(permissions []string) error {
	for _, name := range permissions {
		if !auth.ValidPermission(name) {
			return fmt.Errorf("%w: %q", auth.ErrUnknownPermission, name)
		}
	}

	return nil
}

func replacePermissions(tx *gorm.DB, roleID uint, permissions []string) error {
	seen := make(map[string]struct{}, len(permissions))

	for _, name := range permissions {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		assignment := models.RolePermission{RoleID: roleID, Permission: name}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to assign permission %s: %w", name, err)
		}
	}

	return nil
}
