package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRender     Category = "render"
	CategoryValidation Category = "validation"
	CategoryStorage    Category = "storage"
	CategoryMarkup     Category = "markup"
	CategoryConfig     Category = "config"
)

// BardError is a structured error with a registered code, an explanation and
// a suggestion.
type BardError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (render, validation, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *BardError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *BardError) Unwrap() error {
	return e.Wrapped
}

// Is matches another BardError by code, so errors.Is(err, New("E003"))
// holds for any blob-not-found error.
func (e *BardError) Is(target error) bool {
	t, ok := target.(*BardError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *BardError) WithSuggestion(s string) *BardError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *BardError) WithDetail(d string) *BardError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *BardError) WithDetailf(format string, args ...any) *BardError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *BardError) Wrap(err error) *BardError {
	e.Wrapped = err
	return e
}

// New creates a BardError from a registered error code.
func New(code string) *BardError {
	template, ok := registry[code]
	if !ok {
		return &BardError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &BardError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new BardError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *BardError {
	return &BardError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a BardError.
func FromError(err error, code string) *BardError {
	if err == nil {
		return nil
	}
	var be *BardError
	if stderrors.As(err, &be) {
		return be
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps or joins, is a
// BardError with the given code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &BardError{Code: code})
}
