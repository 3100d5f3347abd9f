package neural

import "fmt"

// Error codes for the neural package
const (
	ErrCodeInvalidNetwork  = 1
	ErrCodeSerialization   = 2
	ErrCodeDeserialization = 3
)

// Error is a structured error type for the neural package
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("neural: [%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("neural: [%d] %s", e.Code, e.Message)
}

// Is reports whether target carries the same code, so errors with details
// still match the predefined ones.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func NewError(code int, message string, details ...string) error {
	err := &Error{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// Predefined errors
var (
	ErrInvalidNetwork  = NewError(ErrCodeInvalidNetwork, "invalid network configuration")
	ErrSerialization   = NewError(ErrCodeSerialization, "network serialization failed")
	ErrDeserialization = NewError(ErrCodeDeserialization, "network deserialization failed")
)

func deserializationError(format string, args ...any) error {
	return NewError(ErrCodeDeserialization, "network deserialization failed", fmt.Sprintf(format, args...))
}
