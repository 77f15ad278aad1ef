package dto

// ErrorResponse is the body of every failed request. Error is a stable machine-readable code.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
