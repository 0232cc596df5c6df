package auth

// CreatorOwned is implemented by resources that record their creating user
// (events, comments, reviews). The creator always passes ownership checks for
// that specific instance, independent of any membership or role evaluation.
type CreatorOwned interface {
	OwnerUserID() uint64
}

// IsCreator reports whether the user created the given resource.
// This is the second, parallel authorization path: it composes with
// HasPermission via a per-route declared OR (see RequirePermissionOrCreator)
// and never consults memberships, so a creator who is not a member of the
// owning organization still passes.
func IsCreator(userID uint64, resource CreatorOwned) bool {
	if resource == nil {
		return false
	}

	return resource.OwnerUserID() == userID
}
