package member

type addInput struct {
	UserID uint64 `json:"user_id" validate:"required"`
	RoleID *uint  `json:"role_id"`
}

type assignRoleInput struct {
	RoleID *uint `json:"role_id"`
}

type inviteInput struct {
	RoleID *uint `json:"role_id"`
}
