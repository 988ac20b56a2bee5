package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Workspace and manifest errors
	ErrProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrManifestWrite   ErrorCode = "MANIFEST_WRITE"
	ErrVersionInvalid  ErrorCode = "VERSION_INVALID"

	// Linking errors
	ErrMissingDependency ErrorCode = "MISSING_DEPENDENCY"
	ErrBackendInvariant  ErrorCode = "BACKEND_INVARIANT"
	ErrDuplicateChild    ErrorCode = "DUPLICATE_CHILD"

	// FileSystem errors
	ErrFileAccess         ErrorCode = "FILE_ACCESS"
	ErrFilesystemConflict ErrorCode = "FILESYSTEM_CONFLICT"
	ErrSymlinkCreate      ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate          ErrorCode = "DIR_CREATE"
)

// LinkError represents a structured error with code and details
type LinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LinkError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LinkError) Is(target error) bool {
	var targetErr *LinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LinkError with the given code and message
func New(code ErrorCode, message string) *LinkError {
	return &LinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LinkError {
	return &LinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LinkError
func Wrap(err error, code ErrorCode, message string) *LinkError {
	if err == nil {
		return nil
	}
	return &LinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LinkError {
	if err == nil {
		return nil
	}
	return &LinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LinkError) WithDetail(key string, value interface{}) *LinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithProject records the project a linking error belongs to
func (e *LinkError) WithProject(name string) *LinkError {
	return e.WithDetail("project", name)
}

// WithDependency records the dependency a linking error belongs to
func (e *LinkError) WithDependency(name string) *LinkError {
	return e.WithDetail("dependency", name)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LinkError
func GetErrorCode(err error) ErrorCode {
	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a LinkError
func GetErrorDetails(err error) map[string]interface{} {
	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Details
	}
	return nil
}
