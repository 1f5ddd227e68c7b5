package morph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for runtime failures.
var (
	// ErrValidation is returned when one or more values are invalid.
	ErrValidation = errors.New("morph: validation failed")

	// ErrPermission is returned when a permission check denies an
	// operation for the acting operator.
	ErrPermission = errors.New("morph: permission denied")

	// ErrDeletionDenied is returned when a linked instance with the
	// deny delete rule blocks deletion.
	ErrDeletionDenied = errors.New("morph: deletion denied")
)

// ValidationError describes why a value is invalid: one or more
// keypath to human-readable-message pairs, keyed by the full
// root-relative keypath, plus the root object for re-inspection.
// In fail-fast mode it carries a single pair; in batch mode it
// aggregates every failure found across the object graph.
type ValidationError struct {
	// Keypaths maps root-relative keypaths to failure messages.
	Keypaths map[string]string
	// Root is the root object of the failed traversal.
	Root any
}

// Error returns the error string. Keypaths print in sorted order for
// deterministic output.
func (e *ValidationError) Error() string {
	if len(e.Keypaths) == 0 {
		return "morph: validation failed"
	}
	paths := make([]string, 0, len(e.Keypaths))
	for p := range e.Keypaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var sb strings.Builder
	sb.WriteString("morph: validation failed:")
	for _, p := range paths {
		fmt.Fprintf(&sb, "\n  '%s': %s", p, e.Keypaths[p])
	}
	return sb.String()
}

// Is reports whether the target matches the sentinel for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError returns a ValidationError with a single keypath
// message.
func NewValidationError(keypath, message string, root any) *ValidationError {
	return &ValidationError{Keypaths: map[string]string{keypath: message}, Root: root}
}

// IsValidation reports whether the error is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrValidation)
}

// merge folds the keypath messages of another validation error into
// this one.
func (e *ValidationError) merge(other *ValidationError) {
	for p, m := range other.Keypaths {
		e.Keypaths[p] = m
	}
}

// DeletionError is returned when deleting an instance is blocked by a
// still-linked reference field carrying the deny delete rule.
type DeletionError struct {
	Class string
	Field string
}

// Error returns the error string.
func (e *DeletionError) Error() string {
	return fmt.Sprintf("morph: cannot delete %s: %s still links instances", e.Class, humanize(e.Field))
}

// Is reports whether the target matches the sentinel for DeletionError.
func (e *DeletionError) Is(target error) bool {
	return target == ErrDeletionDenied
}

// NewDeletionError returns a new DeletionError.
func NewDeletionError(class, fieldName string) *DeletionError {
	return &DeletionError{Class: class, Field: fieldName}
}

// IsDeletionDenied reports whether the error is a DeletionError.
func IsDeletionDenied(err error) bool {
	var e *DeletionError
	return errors.As(err, &e) || errors.Is(err, ErrDeletionDenied)
}

// PermissionError is returned when a configured permission check
// denies an operation on an instance.
type PermissionError struct {
	Class string
	Op    string
	Cause error
}

// Error returns the error string.
func (e *PermissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("morph: %s denied on %s: %v", e.Op, e.Class, e.Cause)
	}
	return fmt.Sprintf("morph: %s denied on %s", e.Op, e.Class)
}

// Unwrap returns the underlying error.
func (e *PermissionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel for PermissionError.
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermission
}

// NewPermissionError returns a new PermissionError.
func NewPermissionError(class, op string, cause error) *PermissionError {
	return &PermissionError{Class: class, Op: op, Cause: cause}
}

// IsPermission reports whether the error is a PermissionError.
func IsPermission(err error) bool {
	var e *PermissionError
	return errors.As(err, &e) || errors.Is(err, ErrPermission)
}
