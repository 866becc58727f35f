// Package errors provides structured errors with stable codes for the
// stow-manager. Codes let the CLI and tests branch on error category
// without matching message strings.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an error category.
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrAborted      ErrorCode = "ABORTED"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrConfigSave    ErrorCode = "CONFIG_SAVE"

	// Package errors
	ErrPackageNotFound ErrorCode = "PACKAGE_NOT_FOUND"
	ErrPackageInvalid  ErrorCode = "PACKAGE_INVALID"
	ErrPackageExists   ErrorCode = "PACKAGE_EXISTS"

	// Operation errors
	ErrConflict   ErrorCode = "CONFLICT"
	ErrSubprocess ErrorCode = "SUBPROCESS"
	ErrPermission ErrorCode = "PERMISSION"

	// Filesystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileMove   ErrorCode = "FILE_MOVE"
	ErrBackup     ErrorCode = "BACKUP"
	ErrSymlink    ErrorCode = "SYMLINK"
)

// ManagerError is a structured error with a code, optional details and an
// optional wrapped cause.
type ManagerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *ManagerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ManagerError) Unwrap() error {
	return e.Wrapped
}

// Is matches two ManagerErrors by code, so errors.Is works against
// code-only sentinels.
func (e *ManagerError) Is(target error) bool {
	var targetErr *ManagerError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a ManagerError with the given code and message.
func New(code ErrorCode, message string) *ManagerError {
	return &ManagerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a ManagerError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *ManagerError {
	return &ManagerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error. Returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *ManagerError {
	if err == nil {
		return nil
	}
	return &ManagerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ManagerError {
	if err == nil {
		return nil
	}
	return &ManagerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail attaches a detail to the error and returns it for chaining.
func (e *ManagerError) WithDetail(key string, value interface{}) *ManagerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var mErr *ManagerError
	if errors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

// GetErrorCode returns the code carried by err, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var mErr *ManagerError
	if errors.As(err, &mErr) {
		return mErr.Code
	}
	return ErrUnknown
}
