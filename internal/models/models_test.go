package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestPost_StringTruncatesToPreviewLength(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text kept", "hello", "hello"},
		{"exactly fifteen", "123456789012345", "123456789012345"},
		{"long text cut", "Тестовый текст поста длиннее", "Тестовый текст "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{Text: tt.text}
			assert.Equal(t, tt.want, p.String())
			assert.LessOrEqual(t, len([]rune(p.String())), PostPreviewLength)
		})
	}
}

func TestStringers(t *testing.T) {
	g := &Group{Title: "Cats"}
	assert.Equal(t, "Cats", g.String())

	c := &Comment{Text: "nice"}
	assert.Equal(t, "nice", c.String())

	f := &Follow{User: User{Username: "leo"}, Author: User{Username: "tolstoy"}}
	assert.Equal(t, "leo following tolstoy", f.String())

	u := &User{Username: "leo"}
	assert.Equal(t, "leo", u.FullName())
	u.FirstName, u.LastName = "Leo", "Tolstoy"
	assert.Equal(t, "Leo Tolstoy", u.FullName())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{NewForbiddenError("no"), fiber.StatusForbidden},
		{NewConflictError("dup"), fiber.StatusConflict},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{fiber.ErrNotFound, fiber.StatusNotFound},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestAppError_WrappingAndPredicates(t *testing.T) {
	base := NewNotFoundError("Group", "cats")
	wrapped := fmt.Errorf("lookup: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.True(t, errors.Is(wrapped, &AppError{Code: CodeNotFound}))
	assert.False(t, errors.Is(wrapped, &AppError{Code: CodeConflict}))

	inner := errors.New("connection reset")
	internal := NewInternalError(inner)
	assert.ErrorIs(t, internal, inner)
	assert.True(t, strings.Contains(internal.Error(), "connection reset"))
}
