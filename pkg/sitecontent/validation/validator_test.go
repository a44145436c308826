package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(account{Username: "owner", Email: "owner@example.com"}))

	err := Struct(account{Username: "ow", Email: "nope"})
	var list Errors
	require.True(t, errors.As(err, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "username", list[0].Field)
	assert.Equal(t, "Username must be at least 3 characters", list[0].Message)
	assert.Equal(t, "Email must be a valid email address", list[1].Message)
	assert.Equal(t, "Username must be at least 3 characters; Email must be a valid email address", err.Error())
}

func TestVar(t *testing.T) {
	tests := []struct {
		field string
		value any
		tag   string
		want  string
	}{
		{"status", "archived", "oneof=draft published", "Status must be one of: draft, published"},
		{"title", "", "required", "Title is required"},
		{"title", "abcdef", "max=5", "Title cannot exceed 5 characters"},
		{"pdf_url", "not a url", "url", "Pdf url must be a valid URL"},
		{"slug", "a-b", "alphanum", "Slug may only contain letters and digits"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			err := Var(tt.field, tt.value, tt.tag)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.want, fe.Message)
		})
	}

	assert.NoError(t, Var("status", "draft", "oneof=draft published"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Pdf url", Label("pdf_url"))
	assert.Equal(t, "", Label(""))
}
