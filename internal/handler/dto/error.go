// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field names the offending input for validation errors.
	Field string `json:"field,omitempty"`
}
