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

	// Identity resolution errors
	ErrUnknownIdentity   ErrorCode = "UNKNOWN_IDENTITY"
	ErrAmbiguousIdentity ErrorCode = "AMBIGUOUS_IDENTITY"

	// Path errors
	ErrPathConflict ErrorCode = "PATH_CONFLICT"

	// Managed file errors
	ErrSourceMissing     ErrorCode = "SOURCE_MISSING"
	ErrTargetFileMissing ErrorCode = "TARGET_FILE_MISSING"

	// Hardware errors
	ErrHardwareAbsent ErrorCode = "HARDWARE_ABSENT"

	// External command errors
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"

	// FileSystem errors
	ErrFileRead   ErrorCode = "FILE_READ"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"
)

// Process exit codes. HardwareAbsent and TargetFileMissing get dedicated
// codes so wrapper scripts can tell a retryable condition (re-attach the
// key, re-run) from a fatally misconfigured host.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitHardwareAbsent    = 2
	ExitTargetFileMissing = 3
)

// WslkitError represents a structured error with code and details
type WslkitError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *WslkitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *WslkitError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *WslkitError) Is(target error) bool {
	var targetErr *WslkitError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new WslkitError with the given code and message
func New(code ErrorCode, message string) *WslkitError {
	return &WslkitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new WslkitError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *WslkitError {
	return &WslkitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a WslkitError
func Wrap(err error, code ErrorCode, message string) *WslkitError {
	if err == nil {
		return nil
	}
	return &WslkitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *WslkitError {
	if err == nil {
		return nil
	}
	return &WslkitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *WslkitError) WithDetail(key string, value interface{}) *WslkitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *WslkitError) WithDetails(details map[string]interface{}) *WslkitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var werr *WslkitError
	if errors.As(err, &werr) {
		return werr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a WslkitError
func GetErrorCode(err error) ErrorCode {
	var werr *WslkitError
	if errors.As(err, &werr) {
		return werr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a WslkitError
func GetErrorDetails(err error) map[string]interface{} {
	var werr *WslkitError
	if errors.As(err, &werr) {
		return werr.Details
	}
	return nil
}

// ExitCode maps an error to the process exit code the CLI should return.
// nil maps to ExitOK.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetErrorCode(err) {
	case ErrHardwareAbsent:
		return ExitHardwareAbsent
	case ErrTargetFileMissing:
		return ExitTargetFileMissing
	default:
		return ExitFailure
	}
}
