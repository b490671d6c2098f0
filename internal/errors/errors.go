package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidYAML     = errors.New("invalid YAML format")
	ErrMultipleDocs    = errors.New("multiple YAML documents found, only one is allowed")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrKeyNotFound     = errors.New("key not found")
	ErrUnexpectedType  = errors.New("unexpected value type")
	ErrNotImplemented  = errors.New("not implemented")
	ErrCycle           = errors.New("cyclic structure")
	ErrNoCandidates    = errors.New("no candidates to match against")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput          ErrorType = "input"
	ErrorTypeParsing        ErrorType = "parsing"
	ErrorTypeLookup         ErrorType = "lookup"
	ErrorTypeNotImplemented ErrorType = "not_implemented"
	ErrorTypeOutput         ErrorType = "output"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same type
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to YAML or expression parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewLookupError creates a new error for a missing or mistyped configuration key
func NewLookupError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeLookup,
		Message: message,
		Err:     err,
	}
}

// NewNotImplementedError creates a new error for unsupported styles or histogram dimensions
func NewNotImplementedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotImplemented,
		Message: message,
		Err:     ErrNotImplemented,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Parsing error: %s", appErr.Message)
		case ErrorTypeLookup:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeNotImplemented:
			return fmt.Sprintf("Not implemented: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrInvalidYAML) {
		return "Error: The input contains invalid YAML. Please check your YAML syntax."
	}
	if errors.Is(err, ErrMultipleDocs) {
		return "Error: Multiple YAML documents found. Please provide a single document."
	}
	if errors.Is(err, ErrCycle) {
		return "Error: The input structure contains itself and cannot be flattened."
	}
	if errors.Is(err, ErrNotImplemented) {
		return "Error: The requested operation is not implemented."
	}

	return fmt.Sprintf("Error: %v", err)
}
