package models

import "time"

// Membership links one user to one organization with at most one assigned role.
// A membership without a role is valid ("member with no role") and grants only
// the default permission set, which is empty. The organization owner is not
// required to hold a membership row: ownership is resolved from the
// organizations table and bypasses role evaluation entirely.
type Membership struct {
	// UserID is the ID of the member user.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// OrganizationID is the ID of the organization joined.
	OrganizationID uint `gorm:"primaryKey;column:organization_id"`
	// RoleID is the assigned role, nil when the member holds no role.
	RoleID *uint `gorm:"column:role_id;index"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, their memberships are removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Organization is the associated organization (loaded via foreign key).
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	// Role is the assigned role, if any. Deleting a role clears this
	// reference on all memberships instead of deleting the membership.
	Role *Role `gorm:"foreignKey:RoleID"`
	// CreatedAt is the timestamp when the user joined the organization (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the membership was last changed (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Membership model.
func (Membership) TableName() string {
	return "memberships"
}
