package handler

const (
	// APIRootPath is the root path of the JSON API route group.
	APIRootPath = "/api"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// MsgInvalidBody is sent when the request body cannot be parsed.
	MsgInvalidBody = "invalid request body"
	// MsgValidationPrefix prefixes validation error messages shown to the caller.
	MsgValidationPrefix = "validation failed: "
	// MsgInternalError is the generic internal failure message.
	MsgInternalError = "internal server error"
)
