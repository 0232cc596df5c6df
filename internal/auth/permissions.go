package auth

// Permission constants define the closed permission catalog of the platform.
// The catalog is code, not data: permissions are created at deploy time and
// never mutated at runtime. Roles reference these names; referencing a name
// outside the catalog is a configuration error and is rejected on write and
// re-checked at process startup (see ValidateStoredPermissions).
const (
	// PermViewOrganization allows viewing non-public organization details.
	PermViewOrganization = "VIEW_ORGANIZATION"
	// PermManageOrganization allows editing organization settings and roles.
	PermManageOrganization = "MANAGE_ORGANIZATION"
	// PermViewMembers allows listing the organization's members.
	PermViewMembers = "VIEW_MEMBERS"
	// PermManageMembers allows adding, removing and re-assigning members.
	PermManageMembers = "MANAGE_MEMBERS"
	// PermViewAnalytics allows viewing organization analytics summaries.
	PermViewAnalytics = "VIEW_ANALYTICS"
	// PermManageEvents allows creating and managing the organization's events.
	PermManageEvents = "MANAGE_EVENTS"
)

// catalog is the full permission set, keyed for O(1) validity checks.
var catalog = map[string]struct{}{
	PermViewOrganization:   {},
	PermManageOrganization: {},
	PermViewMembers:        {},
	PermManageMembers:      {},
	PermViewAnalytics:      {},
	PermManageEvents:       {},
}

// Permissions returns every permission in the catalog.
// The returned slice is a copy; callers may modify it freely.
func Permissions() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}

	return out
}

// ValidPermission reports whether name is part of the permission catalog.
func ValidPermission(name string) bool {
	_, ok := catalog[name]
	return ok
}
