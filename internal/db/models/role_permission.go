package models

// RolePermission links a role to one permission from the static catalog.
// The catalog itself is code, not data: only the assignment of a catalog
// permission to a role is persisted. Permission strings are validated against
// the catalog on write and re-checked at process startup.
// When a role is deleted, its permission assignments are removed (CASCADE).
type RolePermission struct {
	// RoleID is the ID of the role in this assignment.
	RoleID uint `gorm:"primaryKey;column:role_id"`
	// Permission is the catalog permission name (e.g., "MANAGE_MEMBERS").
	Permission string `gorm:"primaryKey;column:permission;size:100"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the RolePermission model.
func (RolePermission) TableName() string {
	return "role_permissions"
}
