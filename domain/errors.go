package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeFileNotFound  = "FILE_NOT_FOUND"
	ErrCodeParseError    = "PARSE_ERROR"
	ErrCodeAnalysisError = "ANALYSIS_ERROR"
	ErrCodeConfigError   = "CONFIG_ERROR"
	ErrCodeOutputError   = "OUTPUT_ERROR"
	ErrCodeDispatchError = "DISPATCH_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, "file not found: "+path, cause)
}

// NewParseError creates a parse error
func NewParseError(path string, cause error) error {
	return NewDomainError(ErrCodeParseError, "failed to parse "+path, cause)
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates a generic configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// HasCode reports whether err wraps a DomainError with the given code.
// ConfigurationError and DispatchError match their codes as well.
func HasCode(err error, code string) bool {
	var de DomainError
	if errors.As(err, &de) && de.Code == code {
		return true
	}
	var ce *ConfigurationError
	if code == ErrCodeConfigError && errors.As(err, &ce) {
		return true
	}
	var dispatchErr *DispatchError
	if code == ErrCodeDispatchError && errors.As(err, &dispatchErr) {
		return true
	}
	return false
}

// ConfigurationError is raised when a configuration value is outside its accepted set
type ConfigurationError struct {
	Field    string
	Value    any
	Accepted []string
}

// NewConfigurationError creates a configuration error for field
func NewConfigurationError(field string, value any, accepted []string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Accepted: accepted}
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("[%s] invalid %s %q", ErrCodeConfigError, e.Field, fmt.Sprint(e.Value))
	if len(e.Accepted) > 0 {
		msg += ", must be one of: " + strings.Join(e.Accepted, ", ")
	}
	return msg
}

// SinkFailure records one sink that failed during dispatch
type SinkFailure struct {
	Sink string
	Err  error
}

// Error implements the error interface
func (f SinkFailure) Error() string {
	return fmt.Sprintf("[%s] %v", f.Sink, f.Err)
}

// Unwrap returns the underlying error
func (f SinkFailure) Unwrap() error {
	return f.Err
}

// DispatchError collects every sink failure of one dispatch
type DispatchError struct {
	Failures []SinkFailure
}

// Error implements the error interface
func (e *DispatchError) Error() string {
	if len(e.Failures) == 0 {
		return "no sink failures"
	}
	if len(e.Failures) == 1 {
		return fmt.Sprintf("[%s] sink failed: %s", ErrCodeDispatchError, e.Failures[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %d sinks failed:\n", ErrCodeDispatchError, len(e.Failures)))
	for i, f := range e.Failures {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, f.Error()))
	}
	return sb.String()
}

// Unwrap exposes every sink error to errors.Is/As
func (e *DispatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// FailedSinks returns the names of the sinks that failed
func (e *DispatchError) FailedSinks() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Sink
	}
	return names
}
