package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural failures. Structural failures signal
// a programming-time misconfiguration and are never recovered
// internally.
var (
	// ErrRedefined is returned when a name is registered twice on a graph.
	ErrRedefined = errors.New("morph: name redefined on graph")

	// ErrNotFound is returned when a graph lookup misses.
	ErrNotFound = errors.New("morph: name not found on graph")

	// ErrFieldNotFound is returned when a definition has no field with
	// the requested name.
	ErrFieldNotFound = errors.New("morph: field not found")

	// ErrLinkedFieldMismatch is returned when a declared cross-class
	// reference has no structurally compatible counterpart.
	ErrLinkedFieldMismatch = errors.New("morph: linked fields unmatched")

	// ErrInvalidSchema is returned for schema declaration errors.
	ErrInvalidSchema = errors.New("morph: invalid schema")
)

// A Kind distinguishes the registries of a graph in lookup and
// redefinition failures.
type Kind string

// Registry kinds.
const (
	KindClass Kind = "class"
	KindDict  Kind = "dict"
	KindEnum  Kind = "enum"
)

// RedefinitionError is returned when a class, structured-dict or enum
// name is registered twice on the same graph.
type RedefinitionError struct {
	Graph string
	Name  string
	Kind  Kind
}

// Error returns the error string.
func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("morph: %s %q redefined on graph %q", e.Kind, e.Name, e.Graph)
}

// Is reports whether the target matches the sentinel for RedefinitionError.
func (e *RedefinitionError) Is(target error) bool {
	return target == ErrRedefined
}

// NewRedefinitionError returns a new RedefinitionError.
func NewRedefinitionError(graph, name string, kind Kind) *RedefinitionError {
	return &RedefinitionError{Graph: graph, Name: name, Kind: kind}
}

// IsRedefinition reports whether the error is a RedefinitionError.
func IsRedefinition(err error) bool {
	var e *RedefinitionError
	return errors.As(err, &e)
}

// NotFoundError is returned when a class, structured-dict or enum name
// is looked up on a graph that does not hold it. It carries both the
// graph name and the requested name.
type NotFoundError struct {
	Graph string
	Name  string
	Kind  Kind
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("morph: %s %q not found on graph %q", e.Kind, e.Name, e.Graph)
}

// Is reports whether the target matches the sentinel for NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError returns a new NotFoundError.
func NewNotFoundError(graph, name string, kind Kind) *NotFoundError {
	return &NotFoundError{Graph: graph, Name: name, Kind: kind}
}

// IsNotFound reports whether the error is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// FieldNotFoundError is returned when a definition has no field with
// the requested name.
type FieldNotFoundError struct {
	Class string
	Field string
}

// Error returns the error string.
func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("morph: no field named %q in class %q", e.Field, e.Class)
}

// Is reports whether the target matches the sentinel for FieldNotFoundError.
func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}

// NewFieldNotFoundError returns a new FieldNotFoundError.
func NewFieldNotFoundError(class, fieldName string) *FieldNotFoundError {
	return &FieldNotFoundError{Class: class, Field: fieldName}
}

// IsFieldNotFound reports whether the error is a FieldNotFoundError.
func IsFieldNotFound(err error) bool {
	var e *FieldNotFoundError
	return errors.As(err, &e)
}

// LinkedFieldError is returned when a declared cross-class reference
// does not have a structurally compatible counterpart on the foreign
// class. It carries both class names and both field names.
type LinkedFieldError struct {
	Class        string
	Field        string
	ForeignClass string
	ForeignField string
}

// Error returns the error string.
func (e *LinkedFieldError) Error() string {
	return fmt.Sprintf("morph: linked fields %s.%s and %s.%s do not match",
		e.Class, e.Field, e.ForeignClass, e.ForeignField)
}

// Is reports whether the target matches the sentinel for LinkedFieldError.
func (e *LinkedFieldError) Is(target error) bool {
	return target == ErrLinkedFieldMismatch
}

// NewLinkedFieldError returns a new LinkedFieldError.
func NewLinkedFieldError(class, fieldName, foreignClass, foreignField string) *LinkedFieldError {
	return &LinkedFieldError{
		Class:        class,
		Field:        fieldName,
		ForeignClass: foreignClass,
		ForeignField: foreignField,
	}
}

// IsLinkedFieldMismatch reports whether the error is a LinkedFieldError.
func IsLinkedFieldMismatch(err error) bool {
	var e *LinkedFieldError
	return errors.As(err, &e)
}

// SchemaError represents a schema declaration error found while
// compiling a definition.
type SchemaError struct {
	Class   string
	Field   string
	Message string
	Cause   error
}

// Error returns the error string.
func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("morph: schema error on class %q", e.Class)
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError returns a new SchemaError.
func NewSchemaError(class, fieldName, message string, cause error) *SchemaError {
	return &SchemaError{Class: class, Field: fieldName, Message: message, Cause: cause}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}
