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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrOSRelease   ErrorCode = "OS_RELEASE"

	// Version errors
	ErrVersionParse ErrorCode = "VERSION_PARSE"

	// Datastore errors
	ErrLinkRead          ErrorCode = "LINK_READ"
	ErrLinkToRoot        ErrorCode = "LINK_TO_ROOT"
	ErrPathEncoding      ErrorCode = "PATH_ENCODING"
	ErrLinkCreate        ErrorCode = "LINK_CREATE"
	ErrLinkSwap          ErrorCode = "LINK_SWAP"
	ErrDirOpen           ErrorCode = "DIR_OPEN"
	ErrLocationCollision ErrorCode = "LOCATION_COLLISION"

	// Repository errors
	ErrRepoLoad        ErrorCode = "REPO_LOAD"
	ErrTargetNotFound  ErrorCode = "TARGET_NOT_FOUND"
	ErrTargetLoad      ErrorCode = "TARGET_LOAD"
	ErrManifestLoad    ErrorCode = "MANIFEST_LOAD"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// Migration errors
	ErrMigrationNotFound ErrorCode = "MIGRATION_NOT_FOUND"
	ErrMigrationLoad     ErrorCode = "MIGRATION_LOAD"
	ErrMigrationSave     ErrorCode = "MIGRATION_SAVE"
	ErrMigrationStart    ErrorCode = "MIGRATION_START"
	ErrMigrationFailure  ErrorCode = "MIGRATION_FAILURE"
	ErrDecode            ErrorCode = "DECODE"

	// Workspace errors
	ErrWorkspaceCreate ErrorCode = "WORKSPACE_CREATE"
)

// MoltError represents a structured error with code and details
type MoltError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MoltError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MoltError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MoltError) Is(target error) bool {
	var targetErr *MoltError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MoltError with the given code and message
func New(code ErrorCode, message string) *MoltError {
	return &MoltError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MoltError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MoltError {
	return &MoltError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MoltError
func Wrap(err error, code ErrorCode, message string) *MoltError {
	if err == nil {
		return nil
	}
	return &MoltError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MoltError {
	if err == nil {
		return nil
	}
	return &MoltError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MoltError) WithDetail(key string, value interface{}) *MoltError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MoltError) WithDetails(details map[string]interface{}) *MoltError {
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
	var moltErr *MoltError
	if errors.As(err, &moltErr) {
		return moltErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MoltError
func GetErrorCode(err error) ErrorCode {
	var moltErr *MoltError
	if errors.As(err, &moltErr) {
		return moltErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MoltError
func GetErrorDetails(err error) map[string]interface{} {
	var moltErr *MoltError
	if errors.As(err, &moltErr) {
		return moltErr.Details
	}
	return nil
}
