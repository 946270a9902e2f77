package errors

import "fmt"

// ErrorCode represents a Pocketroom error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrAlreadyGraded     ErrorCode = "ALREADY_GRADED"     // 409
	ErrValidationFailed  ErrorCode = "VALIDATION_FAILED"  // 422
	ErrMalformedDocument ErrorCode = "MALFORMED_DOCUMENT" // 422
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a capsule cannot be found.
func NewNotFound(id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewAlreadyGraded creates a 409 error for submitting an already-graded quiz.
func NewAlreadyGraded() *Error {
	return &Error{
		Code:    ErrAlreadyGraded,
		Status:  409,
		Message: "quiz already submitted; start a new session to retake it",
	}
}

// NewValidationFailed creates a 422 error naming the first violated draft rule.
func NewValidationFailed(rule, msg string) *Error {
	return &Error{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"rule": rule},
	}
}

// NewMalformedDocument creates a 422 error for import documents that do not
// parse or are missing required fields.
func NewMalformedDocument(msg string) *Error {
	return &Error{
		Code:    ErrMalformedDocument,
		Status:  422,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an Error with the given code.
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

// Rule extracts the violated rule name from a validation error, or "".
func Rule(err error) string {
	e, ok := err.(*Error)
	if !ok || e.Details == nil {
		return ""
	}
	rule, _ := e.Details["rule"].(string)
	return rule
}
