// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/validate"
	"github.com/taibuivan/motofleet/internal/users/credential"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "firstName", "Ada", false},
		{"empty_string", "firstName", "", true},
		{"whitespace_only", "firstName", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, apperr.KindValidation, ae.Kind)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Check folds typed credential failures into field errors.
*/
func TestValidator_Check(t *testing.T) {
	v := &validate.Validator{}

	_, emailErr := credential.NewEmail("not-an-email")
	_, passwordErr := credential.NewPassword("short")
	_, nameErr := credential.NewName("firstName", "Ada")

	err := v.Check(emailErr).Check(passwordErr).Check(nameErr).Err()
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 2)
	assert.Equal(t, apperr.FieldError{Field: "email", Message: "Must be a valid email address"}, ae.Details[0])
	assert.Equal(t, apperr.FieldError{Field: "password", Message: "Minimum 8 characters"}, ae.Details[1])
}

/*
TestValidator_Check_UntypedError keeps foreign errors visible.
*/
func TestValidator_Check_UntypedError(t *testing.T) {
	v := &validate.Validator{}
	v.Check(errors.New("boom"))

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "_", ae.Details[0].Field)
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("lastName", "Lovelace").
		OneOf("role", "USER", "ADMIN", "MANAGER", "USER").
		UUID("id", "0190B8E4-0000-7000-8000-000000000001").
		Err()

	assert.NoError(t, err)
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("lastName", "").                       // Fails
		UUID("id", "0190b8e4000070008000000000000001"). // Fails
		OneOf("role", "ROOT", "ADMIN").                 // Fails
		Custom("role", true, "Not allowed").            // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	require.Len(t, ae.Details, 4)
	assert.Equal(t, apperr.FieldError{Field: "id", Message: "Must be a valid UUID"}, ae.Details[1])
	assert.Equal(t, apperr.FieldError{Field: "role", Message: "Must be one of: ADMIN"}, ae.Details[2])
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,max=320"`
	Password string `json:"password" validate:"required,max=128"`
	Ignored  string `json:"-"`
}

/*
TestStruct reports JSON field names for missing and oversized fields.
*/
func TestStruct(t *testing.T) {
	assert.NoError(t, validate.Struct(loginPayload{Email: "ada@example.com", Password: "x"}))

	err := validate.Struct(loginPayload{Password: string(make([]byte, 129))})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.ElementsMatch(t, []apperr.FieldError{
		{Field: "email", Message: "This field is required"},
		{Field: "password", Message: "Maximum 128 characters"},
	}, ae.Details)
}
