package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
)

// Service provides permission resolution for organization-scoped actions.
// It is the single evaluator implementation: every protected route declares
// its required permission and the decision logic lives here, not in the
// individual middleware functions.
type Service struct {
	db *gorm.DB
}

// NewService creates a new access-control service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission decides whether a user may perform an action requiring the
// given catalog permission within an organization.
//
// The decision order is fixed:
//  1. The organization owner is allowed unconditionally (owner bypass).
//  2. A non-member is denied every organization-scoped permission.
//  3. A member with a role is allowed iff the role grants the permission.
//  4. A member without a role is denied (the default permission set is empty).
//
// The function is a pure decision: it mutates nothing and may be called
// redundantly. Infrastructure failures propagate as errors and are never
// folded into a deny.
func (s *Service) HasPermission(userID uint64, organizationID uint, permission string) (bool, error) {
	resolution, err := s.ResolveMembership(userID, organizationID)
	if err != nil {
		return false, err
	}

	switch resolution.Status {
	case StatusOwner:
		return true, nil
	case StatusNotAMember:
		return false, nil
	case StatusMember:
		if resolution.Role == nil {
			return false, nil
		}

		return resolution.Role.Grants(permission), nil
	default:
		return false, fmt.Errorf("unknown membership status %d", resolution.Status)
	}
}

// HasAnyPermission checks if a user holds at least one of the given
// permissions in the organization.
func (s *Service) HasAnyPermission(userID uint64, organizationID uint, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	resolution, err := s.ResolveMembership(userID, organizationID)
	if err != nil {
		return false, err
	}

	if resolution.Status == StatusOwner {
		return true, nil
	}

	if resolution.Role == nil {
		return false, nil
	}

	for _, perm := range permissions {
		if resolution.Role.Grants(perm) {
			return true, nil
		}
	}

	return false, nil
}

// EffectivePermissions returns the permission set a user holds in an
// organization: the full catalog for the owner, the role's set for a
// role-bearing member, and the empty set otherwise.
func (s *Service) EffectivePermissions(userID uint64, organizationID uint) ([]string, error) {
	resolution, err := s.ResolveMembership(userID, organizationID)
	if err != nil {
		return nil, err
	}

	if resolution.Status == StatusOwner {
		return Permissions(), nil
	}

	if resolution.Role == nil {
		return []string{}, nil
	}

	return resolution.Role.PermissionNames(), nil
}

// ValidateStoredPermissions verifies that every permission assignment in the
// database references a catalog permission. A mismatch means the catalog was
// changed without migrating role data; that is a configuration error and the
// caller is expected to fail process startup loudly rather than let requests
// hit an inconsistent catalog.
func (s *Service) ValidateStoredPermissions() error {
	var stored []string

	err := s.db.Model(&models.RolePermission{}).
		Distinct("permission").
		Pluck("permission", &stored).Error
	if err != nil {
		return fmt.Errorf("failed to list stored permissions: %w", err)
	}

	for _, name := range stored {
		if !ValidPermission(name) {
			return fmt.Errorf("%w: %q", ErrUnknownPermission, name)
		}
	}

	return nil
}
