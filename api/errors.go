package api

import "fmt"

// ErrorCode identifies the tokenizer error kind behind a failed request.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodePrecondition   ErrorCode = "precondition"
	ErrCodeInvalidData    ErrorCode = "invalid_data"
	ErrCodeUnknownToken   ErrorCode = "unknown_token"
	ErrCodeIO             ErrorCode = "io"
	ErrCodeGeneral        ErrorCode = "general"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string    `json:"error"`
	Code    ErrorCode `json:"code,omitempty"`
}

func (e ErrorResponse) Error() string {
	return e.Message
}

// StatusError is an error with an HTTP status code and message,
// it is parsed on the client-side and not returned from the API
type StatusError struct {
	StatusCode   int
	Status       string
	Code         ErrorCode
	ErrorMessage string
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return "something went wrong, please see the server logs for details"
	}
}
