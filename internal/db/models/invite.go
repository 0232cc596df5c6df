package models

import "time"

// Invite is a single-use code that lets a user join an organization,
// optionally with a pre-assigned role. Redeeming an invite creates a
// membership; the code is consumed in the same transaction.
type Invite struct {
	// ID is the unique identifier for the invite.
	ID uint64 `gorm:"primaryKey"`
	// Code is the random invite code handed to the invitee.
	Code string `gorm:"uniqueIndex;size:32;not null"`
	// OrganizationID is the organization the invite grants membership in.
	OrganizationID uint `gorm:"column:organization_id;not null;index"`
	// Organization is the associated organization (loaded via foreign key).
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	// RoleID is the role assigned on redemption, nil for a role-less membership.
	RoleID *uint `gorm:"column:role_id"`
	// CreatedBy is the user who issued the invite.
	CreatedBy uint64 `gorm:"column:created_by;not null"`
	// ExpiresAt is when the invite stops being redeemable.
	ExpiresAt time.Time
	// CreatedAt is the timestamp when the invite was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Invite model.
func (Invite) TableName() string {
	return "invites"
}

// Expired reports whether the invite is past its expiry time.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
