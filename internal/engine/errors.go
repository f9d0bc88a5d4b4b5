// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrTransport                = errors.New("transport failure")
	ErrInvalidCredentials       = errors.New("login or password is incorrect")
	ErrAuthPageFormat           = errors.New("login page format changed")
	ErrNavigationNotFound       = errors.New("catalog navigation menu not found")
	ErrProductPageFormat        = errors.New("product page format changed")
	ErrUnrecognizedAvailability = errors.New("unrecognized availability state")
	ErrPaginationRunaway        = errors.New("pagination did not terminate")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeTransport          ErrorCode = "TRANSPORT"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAuthPageFormat     ErrorCode = "AUTH_PAGE_FORMAT"
	ErrCodeNavigation         ErrorCode = "NAVIGATION_NOT_FOUND"
	ErrCodeProductPageFormat  ErrorCode = "PRODUCT_PAGE_FORMAT"
	ErrCodePagination         ErrorCode = "PAGINATION"
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeTransport:          ErrTransport,
	ErrCodeInvalidCredentials: ErrInvalidCredentials,
	ErrCodeAuthPageFormat:     ErrAuthPageFormat,
	ErrCodeNavigation:         ErrNavigationNotFound,
	ErrCodeProductPageFormat:  ErrProductPageFormat,
	ErrCodePagination:         ErrPaginationRunaway,
}

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches another EngineError by code, or the sentinel registered for the code
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	if sentinel, ok := codeSentinels[e.Code]; ok && sentinel == target {
		return true
	}
	return false
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// FieldError reports a required product field that could not be located
type FieldError struct {
	Field    string
	Selector string
	URL      string
}

func (e *FieldError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("missing %s (%s) on %s", e.Field, e.Selector, e.URL)
	}
	return fmt.Sprintf("missing %s (%s)", e.Field, e.Selector)
}

// Is makes every FieldError match ErrProductPageFormat
func (e *FieldError) Is(target error) bool {
	return target == ErrProductPageFormat
}

// IsFatal reports whether err must abort a catalog run
func IsFatal(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAuthPageFormat) ||
		errors.Is(err, ErrNavigationNotFound) ||
		errors.Is(err, ErrPaginationRunaway)
}
