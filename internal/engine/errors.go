package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes caller errors returned by the engine.
type ErrorCode string

const (
	// ErrCodeInvalidName indicates an empty flag name.
	ErrCodeInvalidName ErrorCode = "INVALID_NAME"

	// ErrCodeDuplicateFlag indicates the name is already taken.
	ErrCodeDuplicateFlag ErrorCode = "DUPLICATE_FLAG"

	// ErrCodeUnresolvedDependency indicates one or more dependency names do not exist.
	ErrCodeUnresolvedDependency ErrorCode = "UNRESOLVED_DEPENDENCY"

	// ErrCodeCycleDetected indicates a dependency would close a cycle.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"

	// ErrCodeFlagNotFound indicates the named flag does not exist.
	ErrCodeFlagNotFound ErrorCode = "FLAG_NOT_FOUND"

	// ErrCodeUnsatisfiedDependencies indicates an enable with disabled dependencies.
	ErrCodeUnsatisfiedDependencies ErrorCode = "UNSATISFIED_DEPENDENCIES"
)

// FlagError is a synchronous, non-retryable caller error.
//
// Infrastructure failures (database errors, cancelled contexts) are never
// FlagErrors; they are returned wrapped with fmt.Errorf.
type FlagError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Flag is the flag the operation targeted.
	Flag string

	// Dependency names the offending dependency (cycle errors).
	Dependency string

	// Missing lists every offending dependency name (unresolved and
	// unsatisfied errors), in request or edge order.
	Missing []string
}

// Error implements the error interface.
func (e *FlagError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s (flag=%s, missing=%s)", e.Code, e.Message, e.Flag, strings.Join(e.Missing, ","))
	}
	if e.Flag != "" {
		return fmt.Sprintf("%s: %s (flag=%s)", e.Code, e.Message, e.Flag)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the FlagError code of err, or "" if err is not a FlagError.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var fe *FlagError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsInvalidName reports whether err is an empty-name error.
func IsInvalidName(err error) bool { return CodeOf(err) == ErrCodeInvalidName }

// IsDuplicateFlag reports whether err is a duplicate-flag error.
func IsDuplicateFlag(err error) bool { return CodeOf(err) == ErrCodeDuplicateFlag }

// IsUnresolvedDependency reports whether err is an unresolved-dependency error.
func IsUnresolvedDependency(err error) bool { return CodeOf(err) == ErrCodeUnresolvedDependency }

// IsCycleDetected reports whether err is a cycle-detected error.
func IsCycleDetected(err error) bool { return CodeOf(err) == ErrCodeCycleDetected }

// IsNotFound reports whether err is a flag-not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeFlagNotFound }

// IsUnsatisfiedDependencies reports whether err is an unsatisfied-dependencies error.
func IsUnsatisfiedDependencies(err error) bool { return CodeOf(err) == ErrCodeUnsatisfiedDependencies }

// NewInvalidNameError creates a FlagError for an empty name.
func NewInvalidNameError() *FlagError {
	return &FlagError{
		Code:    ErrCodeInvalidName,
		Message: "flag name must not be empty",
	}
}

// NewDuplicateFlagError creates a FlagError for a taken name.
func NewDuplicateFlagError(name string) *FlagError {
	return &FlagError{
		Code:    ErrCodeDuplicateFlag,
		Message: "flag already exists",
		Flag:    name,
	}
}

// NewUnresolvedDependencyError creates a FlagError listing unknown dependency names.
func NewUnresolvedDependencyError(name string, missing []string) *FlagError {
	return &FlagError{
		Code:    ErrCodeUnresolvedDependency,
		Message: "one or more dependencies not found",
		Flag:    name,
		Missing: missing,
	}
}

// NewCycleError creates a FlagError for a dependency that would close a cycle.
func NewCycleError(name, dependency string) *FlagError {
	return &FlagError{
		Code:       ErrCodeCycleDetected,
		Message:    fmt.Sprintf("circular dependency detected: %s → %s", dependency, name),
		Flag:       name,
		Dependency: dependency,
	}
}

// NewNotFoundError creates a FlagError for an unknown flag.
func NewNotFoundError(name string) *FlagError {
	return &FlagError{
		Code:    ErrCodeFlagNotFound,
		Message: "flag not found",
		Flag:    name,
	}
}

// NewUnsatisfiedDependenciesError creates a FlagError listing every disabled dependency.
func NewUnsatisfiedDependenciesError(name string, missing []string) *FlagError {
	return &FlagError{
		Code:    ErrCodeUnsatisfiedDependencies,
		Message: "missing active dependencies",
		Flag:    name,
		Missing: missing,
	}
}
