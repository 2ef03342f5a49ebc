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

// Is reports whether target is a DomainError with the same code and message,
// so a sentinel still matches after it has been wrapped with a cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
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

// WithCause returns a copy of e carrying err as its cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeExecution     = "EXECUTION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Search validation errors
var (
	ErrEmptyQuery        = NewDomainError(ErrCodeValidation, "search query cannot be empty")
	ErrInvalidQuery      = NewDomainError(ErrCodeValidation, "search query contains invalid characters or is too long")
	ErrInvalidPage       = NewDomainError(ErrCodeValidation, "page must be at least 1")
	ErrInvalidPageSize   = NewDomainError(ErrCodeValidation, "page size must be between 1 and 100")
	ErrInvalidMaxResults = NewDomainError(ErrCodeValidation, "max results must be between 1 and 1000")
	ErrInvalidSort       = NewDomainError(ErrCodeValidation, "unsupported sort field or order")
	ErrInvalidField      = NewDomainError(ErrCodeValidation, "unsupported search field")
)

// Execution errors
var (
	ErrSearchExecution = NewDomainError(ErrCodeExecution, "search execution failed")
)
