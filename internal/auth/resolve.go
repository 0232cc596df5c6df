package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
)

// MembershipStatus is the discriminant of a membership resolution.
// The three-way result is deliberate: the owner path bypasses role evaluation
// entirely and must stay distinguishable from a role-bearing member, which in
// turn must stay distinguishable from a non-member.
type MembershipStatus int

const (
	// StatusNotAMember means the user holds no membership in the organization.
	StatusNotAMember MembershipStatus = iota
	// StatusMember means the user holds a membership, with or without a role.
	StatusMember
	// StatusOwner means the user is the organization's designated owner.
	StatusOwner
)

// Resolution is the result of resolving a user against an organization.
// Role is only set when Status is StatusMember and the membership carries a
// role; it is nil for role-less members and for the other two statuses.
type Resolution struct {
	Status MembershipStatus
	Role   *models.Role
}

// IsOwner reports whether the resolution identifies the organization owner.
func (r Resolution) IsOwner() bool {
	return r.Status == StatusOwner
}

// IsMember reports whether the user is a member (owner counts as a member).
func (r Resolution) IsMember() bool {
	return r.Status == StatusMember || r.Status == StatusOwner
}

// ResolveMembership maps (user, organization) to Owner, Member or NotAMember.
// It always reads the current membership state; permission checks are
// security-sensitive and tolerate no staleness, so no caching happens here.
func (s *Service) ResolveMembership(userID uint64, organizationID uint) (Resolution, error) {
	var org models.Organization

	err := s.db.Select("id", "owner_id").First(&org, organizationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Resolution{}, ErrOrganizationNotFound
	}

	if err != nil {
		return Resolution{}, fmt.Errorf("failed to load organization: %w", err)
	}

	if org.OwnerID == userID {
		return Resolution{Status: StatusOwner}, nil
	}

	var membership models.Membership

	err = s.db.Preload("Role.Permissions").
		Where("user_id = ? AND organization_id = ?", userID, organizationID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Resolution{Status: StatusNotAMember}, nil
	}

	if err != nil {
		return Resolution{}, fmt.Errorf("failed to resolve membership: %w", err)
	}

	return Resolution{Status: StatusMember, Role: membership.Role}, nil
}
