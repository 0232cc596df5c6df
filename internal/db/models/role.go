package models

import "time"

// Role represents an organization-scoped role in the access-control system.
// Roles bundle permissions from the static catalog and are assigned to
// memberships. Role names are unique within their organization
// (case-insensitive); the same name may exist in different organizations.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// OrganizationID is the organization this role belongs to.
	OrganizationID uint `gorm:"column:organization_id;not null;index"`
	// Organization is the owning organization (loaded via foreign key).
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	// Name is the role name, unique within the organization (e.g., "admin", "moderator").
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// Permissions are the catalog permissions granted by this role.
	Permissions []RolePermission `gorm:"foreignKey:RoleID"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// PermissionNames returns the permission strings granted by this role.
func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Permission)
	}

	return names
}

// Grants reports whether this role grants the given catalog permission.
func (r *Role) Grants(permission string) bool {
	for _, p := range r.Permissions {
		if p.Permission == permission {
			return true
		}
	}

	return false
}
