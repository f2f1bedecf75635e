// Package service implements the yatube use cases on top of the repositories.
package service

import (
	"yatube/internal/models"
	"yatube/internal/validation"
)

// ErrNotAuthor is returned when someone other than the author edits a post.
var ErrNotAuthor = models.NewForbiddenError("Only the author can edit this post")

// FormError carries per-field validation messages back to a form page.
type FormError struct {
	Fields validation.FieldErrors
}

func (e *FormError) Error() string {
	return "form has errors"
}

// Unwrap lets callers match a FormError with models.IsValidation.
func (e *FormError) Unwrap() error {
	return models.NewValidationError(e.Error())
}

func newFormError(field, msg string) *FormError {
	errs := validation.FieldErrors{}
	errs.Add(field, msg)
	return &FormError{Fields: errs}
}
