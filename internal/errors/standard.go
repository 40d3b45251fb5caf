// Package errors provides standardized error values for the optimizer and
// its hosts.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryPass   ErrorCategory = "PASS"
	CategoryInput  ErrorCategory = "INPUT"
	CategoryConfig ErrorCategory = "CONFIG"
	CategoryHost   ErrorCategory = "HOST"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
	Cause    error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg + " (caller: " + e.Caller + ")"
}

// Unwrap exposes the underlying cause to errors.Is and errors.As
func (e *StandardError) Unwrap() error { return e.Cause }

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	return newStandardError(2, category, code, message, context, nil)
}

func newStandardError(skip int, category ErrorCategory, code, message string, context map[string]interface{}, cause error) *StandardError {
	pc, _, _, ok := runtime.Caller(skip)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
		Cause:    cause,
	}
}

// Common error constructors

// PassFailure reports a pass that returned an error or panicked on a file.
func PassFailure(passID, file string, cause error) *StandardError {
	return newStandardError(2, CategoryPass, "PASS_FAILED",
		fmt.Sprintf("pass %s failed on %s", passID, file),
		map[string]interface{}{"pass": passID, "file": file}, cause)
}

// PassPanic converts a recovered panic value into an error cause.
func PassPanic(value interface{}) error {
	if err, ok := value.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", value)
}

func InvalidInput(source, details string, cause error) *StandardError {
	return newStandardError(2, CategoryInput, "INVALID_INPUT",
		fmt.Sprintf("invalid input %s: %s", source, details),
		map[string]interface{}{"source": source}, cause)
}

func InvalidConfig(field, details string, cause error) *StandardError {
	return newStandardError(2, CategoryConfig, "INVALID_CONFIG",
		fmt.Sprintf("invalid config field %s: %s", field, details),
		map[string]interface{}{"field": field}, cause)
}

func DuplicateHook(name string) *StandardError {
	return newStandardError(2, CategoryHost, "DUPLICATE_HOOK",
		fmt.Sprintf("pre-compile hook %q already registered", name),
		map[string]interface{}{"hook": name}, nil)
}

// HasCategory reports whether err wraps a StandardError of the category.
func HasCategory(err error, category ErrorCategory) bool {
	var se *StandardError
	return errors.As(err, &se) && se.Category == category
}
