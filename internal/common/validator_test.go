package common

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.Valid())

	v.Check(false, "email", "must be provided")
	v.Check(false, "email", "must be a valid email address")
	v.Check(true, "name", "must be provided")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"email": "must be provided"}, v.Errors)

	var validationErr ValidationError
	assert.True(t, errors.As(v.ValidationError(), &validationErr))
	assert.Equal(t, "must be provided", validationErr.Errors["email"])
}

func TestMaxChars(t *testing.T) {
	v := NewValidator()

	assert.True(t, v.MaxChars("héllo", 5))
	assert.False(t, v.MaxChars("héllo!", 5))
}

func TestEmailRX(t *testing.T) {
	testCases := []struct {
		email string
		valid bool
	}{
		{email: "", valid: false},
		{email: "a", valid: false},
		{email: "a@", valid: false},
		{email: "a@b", valid: false},
		{email: "a@b.c", valid: false},
		{email: "a@x.com", valid: true},
		{email: "john.doe+blog@example.co.uk", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			v := NewValidator()
			assert.Equal(t, tc.valid, v.Matches(tc.email, EmailRX))
		})
	}
}

func TestViolations(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "users_email_key"}
	fk := &pq.Error{Code: "23503", Constraint: "blogs_user_id_fkey"}

	assert.True(t, UniqueViolation(unique, "users_email_key"))
	assert.False(t, UniqueViolation(unique, "users_name_key"))
	assert.False(t, UniqueViolation(fk, "blogs_user_id_fkey"))
	assert.True(t, ForeignKeyViolation(fk, "blogs_user_id_fkey"))
	assert.False(t, ForeignKeyViolation(errors.New("boom"), "blogs_user_id_fkey"))
}
