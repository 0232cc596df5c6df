package comment

type createInput struct {
	Body string `json:"body" validate:"required,max=2000"`
}
