package role

type createInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions"`
}

type updateInput struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=255"`
	Permissions *[]string `json:"permissions"`
}
