// Package errors provides custom error types for the dnmerge system.
// These errors enable programmatic error checking at the run boundary,
// where the CLI and the HTTP service map them to exit codes and responses.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the dnmerge system
var (
	// ErrMissingKeyColumn indicates that a dataset has neither the canonical
	// key column nor any of its aliases
	ErrMissingKeyColumn = errors.New("missing key column")

	// ErrUnreadableInput indicates that an input could not be parsed as tabular data
	ErrUnreadableInput = errors.New("unreadable input")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrRunFailed indicates that a reconciliation run aborted unexpectedly
	ErrRunFailed = errors.New("run failed")
)

// MissingKeyColumnError is returned when a dataset lacks the key column
// after alias resolution.
type MissingKeyColumnError struct {
	Dataset string
	Column  string
	Aliases []string
}

// Error implements the error interface
func (e *MissingKeyColumnError) Error() string {
	if len(e.Aliases) > 0 {
		return fmt.Sprintf("dataset %s has no key column %q (aliases tried: %s)",
			e.Dataset, e.Column, strings.Join(e.Aliases, ", "))
	}
	return fmt.Sprintf("dataset %s has no key column %q", e.Dataset, e.Column)
}

// Is implements errors.Is support
func (e *MissingKeyColumnError) Is(target error) bool {
	return target == ErrMissingKeyColumn
}

// NewMissingKeyColumnError creates a new MissingKeyColumnError
func NewMissingKeyColumnError(dataset, column string, aliases []string) *MissingKeyColumnError {
	return &MissingKeyColumnError{Dataset: dataset, Column: column, Aliases: aliases}
}

// UnreadableInputError represents an input that could not be parsed.
// The message carries the cause verbatim.
type UnreadableInputError struct {
	Dataset string
	Format  string
	Err     error
}

// Error implements the error interface
func (e *UnreadableInputError) Error() string {
	cause := "unknown cause"
	if e.Err != nil {
		cause = e.Err.Error()
	}
	if e.Format != "" {
		return fmt.Sprintf("cannot read %s input %s: %s", e.Format, e.Dataset, cause)
	}
	return fmt.Sprintf("cannot read input %s: %s", e.Dataset, cause)
}

// Unwrap implements errors.Unwrap
func (e *UnreadableInputError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UnreadableInputError) Is(target error) bool {
	return target == ErrUnreadableInput
}

// NewUnreadableInputError creates a new UnreadableInputError
func NewUnreadableInputError(dataset, format string, err error) *UnreadableInputError {
	return &UnreadableInputError{Dataset: dataset, Format: format, Err: err}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "xlsx", "yaml"
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// RunError wraps a failure that escaped a reconciliation run,
// including recovered panics.
type RunError struct {
	RunID   string
	Stage   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *RunError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("run %s failed during %s: %s", e.RunID, e.Stage, e.Message)
	}
	return fmt.Sprintf("run %s failed: %s", e.RunID, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RunError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RunError) Is(target error) bool {
	return target == ErrRunFailed
}

// NewRunError creates a new RunError
func NewRunError(runID, stage string, err error) *RunError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &RunError{RunID: runID, Stage: stage, Message: message, Err: err}
}

// Helper functions for error checking

// IsMissingKeyColumn checks if an error is a missing key column error
func IsMissingKeyColumn(err error) bool {
	return errors.Is(err, ErrMissingKeyColumn)
}

// IsUnreadableInput checks if an error is an unreadable input error
func IsUnreadableInput(err error) bool {
	return errors.Is(err, ErrUnreadableInput)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapCanceled converts a context error into a cancellation error
// that still matches the original context error.
func WrapCanceled(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrCanceled, err)
}
