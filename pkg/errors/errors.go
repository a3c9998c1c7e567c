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

	// Build type errors
	ErrTypeUnknown  ErrorCode = "BUILD_TYPE_UNKNOWN"
	ErrTypeMismatch ErrorCode = "BUILD_TYPE_MISMATCH"
	ErrTypeNotFound ErrorCode = "BUILD_TYPE_NOT_FOUND"
	ErrBuildPrepare ErrorCode = "BUILD_PREPARE"

	// Store errors
	ErrStoreMissing   ErrorCode = "STORE_MISSING"
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"

	// FileSystem errors
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileCreate    ErrorCode = "FILE_CREATE"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"

	// External command errors
	ErrCommandRun ErrorCode = "COMMAND_RUN"
	ErrGitRun     ErrorCode = "GIT_RUN"
)

// SelectError represents a structured error with code and details
type SelectError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SelectError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SelectError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SelectError) Is(target error) bool {
	var targetErr *SelectError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SelectError with the given code and message
func New(code ErrorCode, message string) *SelectError {
	return &SelectError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SelectError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SelectError {
	return &SelectError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SelectError
func Wrap(err error, code ErrorCode, message string) *SelectError {
	if err == nil {
		return nil
	}
	return &SelectError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SelectError {
	if err == nil {
		return nil
	}
	return &SelectError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SelectError) WithDetail(key string, value interface{}) *SelectError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var selErr *SelectError
	if errors.As(err, &selErr) {
		return selErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SelectError
func GetErrorCode(err error) ErrorCode {
	var selErr *SelectError
	if errors.As(err, &selErr) {
		return selErr.Code
	}
	return ErrUnknown
}
