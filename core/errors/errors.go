// Package errors provides the error taxonomy shared by the corpus adapters.
//
// Every concrete error unwraps to one of the sentinels below so callers can
// classify failures with errors.Is without knowing which adapter produced them.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformed indicates a source annotation that cannot be reconciled
	ErrMalformed = errors.New("malformed annotation")
	// ErrUnsupported indicates an unsupported schema, format or operation
	ErrUnsupported = errors.New("unsupported")
)

// MalformedAnnotationError reports a source annotation or record that cannot be
// turned into a consistent span. It names the document and, when known, the
// annotation so the source data can be located and fixed.
type MalformedAnnotationError struct {
	DocumentID   string
	AnnotationID string
	Reason       string
	Err          error
}

func (e *MalformedAnnotationError) Error() string {
	switch {
	case e.DocumentID != "" && e.AnnotationID != "":
		return fmt.Sprintf("document %s: annotation %s: %s", e.DocumentID, e.AnnotationID, e.Reason)
	case e.DocumentID != "":
		return fmt.Sprintf("document %s: %s", e.DocumentID, e.Reason)
	default:
		return fmt.Sprintf("malformed annotation: %s", e.Reason)
	}
}

func (e *MalformedAnnotationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformed
}

// MissingResourceError is returned when a corpus needs local data that is not
// present, typically an archive the user has to download by hand.
type MissingResourceError struct {
	Dataset     string
	ExpectedDir string
	Hint        string
	Err         error
}

func (e *MissingResourceError) Error() string {
	var b strings.Builder
	if e.Dataset != "" {
		fmt.Fprintf(&b, "dataset %s: ", e.Dataset)
	}
	fmt.Fprintf(&b, "expected local data in %s", e.ExpectedDir)
	if e.Hint != "" {
		fmt.Fprintf(&b, " (%s)", e.Hint)
	}
	return b.String()
}

func (e *MissingResourceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// SchemaMismatchError reports a schema that the selected source format cannot
// produce. It is a configuration error and is raised before any I/O.
type SchemaMismatchError struct {
	Schema    string
	Format    string
	Supported []string
}

func (e *SchemaMismatchError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("unknown schema %q", e.Schema)
	}
	if len(e.Supported) == 0 {
		return fmt.Sprintf("format %s does not produce schema %q", e.Format, e.Schema)
	}
	return fmt.Sprintf("format %s does not produce schema %q (supported: %s)",
		e.Format, e.Schema, strings.Join(e.Supported, ", "))
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrUnsupported
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "member", "object", "dataset")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "list", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "BRAT", "BioC", "XLSX")
	Path    string // Resource name, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// NewMalformed creates a MalformedAnnotationError
func NewMalformed(documentID, annotationID, reason string) *MalformedAnnotationError {
	return &MalformedAnnotationError{
		DocumentID:   documentID,
		AnnotationID: annotationID,
		Reason:       reason,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
