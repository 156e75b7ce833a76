package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeRemote        = "REMOTE_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors. Messages are user-facing and returned verbatim.
var (
	ErrNoPayload         = NewDomainError(ErrCodeValidation, "No JSON data provided")
	ErrEmptyQuestion     = NewDomainError(ErrCodeValidation, "No question provided")
	ErrQuestionNotString = NewDomainError(ErrCodeValidation, "question must be a string")
)

// Remote tier errors, used when failures are surfaced as statuses.
var (
	ErrRemoteNotConfigured = NewDomainError(ErrCodeConfiguration, "remote answer provider not configured")
	ErrRemoteFailed        = NewDomainError(ErrCodeRemote, "remote answer provider failed")
)
