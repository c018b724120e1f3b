package booking

import "fmt"

// Error codes surfaced to callers. Stable, machine-readable; the HTTP layer
// maps them to statuses.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeSlotUnavailable   = "SLOT_UNAVAILABLE"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
)

// BookingError is an expected, recoverable-by-caller outcome. It is returned,
// never panicked, and never retried blindly.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(msg string) error {
	return &BookingError{Code: CodeNotFound, Message: msg}
}

func NewInvalidTransitionError(msg string) error {
	return &BookingError{Code: CodeInvalidTransition, Message: msg}
}

func NewUnauthorizedError(msg string) error {
	return &BookingError{Code: CodeUnauthorized, Message: msg}
}

func NewSlotUnavailableError(msg string) error {
	return &BookingError{Code: CodeSlotUnavailable, Message: msg}
}

func NewInvalidArgumentError(msg string) error {
	return &BookingError{Code: CodeInvalidArgument, Message: msg}
}
