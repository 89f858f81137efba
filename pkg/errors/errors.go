// Package errors provides a structured error system for cachekit with error codes, categories, and context.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a structured error code for cachekit operations.
type ErrorCode string

// Error code constants organized by category.
const (
	// Configuration Errors
	ErrCodeInvalidConfig    ErrorCode = "INVALID_CONFIG"
	ErrCodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Eviction Errors
	ErrCodeEmptyStoreEviction ErrorCode = "EMPTY_STORE_EVICTION"
	ErrCodeVictimNotResident  ErrorCode = "VICTIM_NOT_RESIDENT"

	// Memoization Errors
	ErrCodeKeyEncoding ErrorCode = "KEY_ENCODING"

	// Internal System Errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorCategory represents the general category of an error.
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryEviction      ErrorCategory = "eviction"
	CategoryMemoization   ErrorCategory = "memoization"
	CategoryInternal      ErrorCategory = "internal"
)

// CacheError represents a structured error with context and metadata.
type CacheError struct {
	Code     ErrorCode              `json:"code"`
	Category ErrorCategory          `json:"category"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`

	Cause     error     `json:"-"` // Not serialized to avoid circular refs
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error wrapping compatibility.
func (e *CacheError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error (for errors.Is compatibility).
// Two CacheErrors match when their codes match.
func (e *CacheError) Is(target error) bool {
	if cacheErr, ok := target.(*CacheError); ok {
		return e.Code == cacheErr.Code
	}
	return false
}

// WithDetail attaches a key/value detail to the error and returns it.
func (e *CacheError) WithDetail(key string, value interface{}) *CacheError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause attaches an underlying cause to the error and returns it.
func (e *CacheError) WithCause(cause error) *CacheError {
	e.Cause = cause
	return e
}

// NewError creates a new cachekit error with default values.
func NewError(code ErrorCode, message string) *CacheError {
	return &CacheError{
		Code:      code,
		Category:  GetCategory(code),
		Message:   message,
		Timestamp: time.Now(),
	}
}

// GetCategory determines the category based on the error code.
func GetCategory(code ErrorCode) ErrorCategory {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INVALID_CONFIG") || strings.HasPrefix(codeStr, "CONFIG_"):
		return CategoryConfiguration
	case strings.HasPrefix(codeStr, "EMPTY_STORE_") || strings.HasPrefix(codeStr, "VICTIM_"):
		return CategoryEviction
	case strings.HasPrefix(codeStr, "KEY_"):
		return CategoryMemoization
	default:
		return CategoryInternal
	}
}

// NewInvalidConfig creates a configuration error. These are raised at
// construction time only; a successfully built cache never raises one.
func NewInvalidConfig(format string, args ...interface{}) *CacheError {
	return NewError(ErrCodeInvalidConfig, fmt.Sprintf(format, args...))
}

// NewConfigLoad creates an error for a configuration file that could not
// be read or parsed.
func NewConfigLoad(path string, cause error) *CacheError {
	return NewError(ErrCodeConfigLoad, fmt.Sprintf("failed to load configuration from %s", path)).
		WithDetail("path", path).
		WithCause(cause)
}

// NewEmptyStoreEviction creates the programming-error-class fault raised
// when victim selection is invoked with no entries.
func NewEmptyStoreEviction() *CacheError {
	return NewError(ErrCodeEmptyStoreEviction, "eviction requested on a store with zero entries")
}

// NewVictimNotResident creates the fault raised when an eviction policy
// returns a key that is not present in the store.
func NewVictimNotResident(key string) *CacheError {
	return NewError(ErrCodeVictimNotResident, "eviction policy selected a non-resident key").
		WithDetail("key", key)
}

// NewKeyEncoding creates an error for a memoization input that could not
// be canonically serialized.
func NewKeyEncoding(cause error) *CacheError {
	return NewError(ErrCodeKeyEncoding, "failed to serialize memoization input").WithCause(cause)
}

// IsCode reports whether err (or anything it wraps) is a CacheError with
// the given code.
func IsCode(err error, code ErrorCode) bool {
	var cacheErr *CacheError
	if stderrors.As(err, &cacheErr) {
		return cacheErr.Code == code
	}
	return false
}
