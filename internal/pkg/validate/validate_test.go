package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Category string `json:"category" validate:"omitempty,oneof=tops bottoms"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@b.com", Password: "secret1"}))
}

func TestStruct_InvalidEmail(t *testing.T) {
	err := Struct(sample{Email: "nope", Password: "secret1"})
	assert.EqualError(t, err, "Please provide a valid email")
}

func TestStruct_UsesJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "a@b.com"})
	assert.EqualError(t, err, "password is required")
}

func TestStruct_MultipleErrorsJoined(t *testing.T) {
	err := Struct(sample{Password: "abc", Category: "hats"})
	assert.ErrorContains(t, err, "email is required")
	assert.ErrorContains(t, err, "password must be at least 6 characters")
	assert.ErrorContains(t, err, "category must be one of [tops bottoms]")
}
