// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package credential implements the immutable identity value objects.

Every value (Email, Name, Password) can only be obtained through its validating
factory. A factory returns either a usable value or a typed [*Failure] naming
exactly one violated rule; expected invalid input never panics.

# Invariants

  - Email is normalized (trimmed, lower-cased) once, at creation, so two emails
    that differ only in case or surrounding whitespace compare equal with ==.
  - Name is trimmed and restricted to letters, spaces, hyphens and apostrophes.
  - Password is transient. It is never persisted, serialized, or logged.
*/
package credential

import (
	"errors"
	"fmt"
)

// # Failure Kinds

// Kind identifies which validation rule a raw credential violated.
type Kind int

const (
	KindEmailInvalid Kind = iota + 1
	KindTooShort
	KindTooLong
	KindInvalidCharacters
	KindMissingUppercase
	KindMissingLowercase
	KindMissingDigit
	KindMissingSymbol
)

// String returns the snake_case kind name used in logs and tests.
func (k Kind) String() string {
	switch k {
	case KindEmailInvalid:
		return "email_invalid"
	case KindTooShort:
		return "too_short"
	case KindTooLong:
		return "too_long"
	case KindInvalidCharacters:
		return "invalid_characters"
	case KindMissingUppercase:
		return "missing_uppercase"
	case KindMissingLowercase:
		return "missing_lowercase"
	case KindMissingDigit:
		return "missing_digit"
	case KindMissingSymbol:
		return "missing_symbol"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is the typed validation result of a credential factory.
type Failure struct {
	// Field is the JSON field the raw value came from.
	Field string
	// Kind is the first violated rule.
	Kind Kind
	// limit is the bound referenced by TooShort/TooLong messages.
	limit int
}

// Error implements error.
func (f *Failure) Error() string {
	return fmt.Sprintf("credential: %s: %s", f.Field, f.Kind)
}

// FieldName returns the offending JSON field.
func (f *Failure) FieldName() string { return f.Field }

// Reason returns a client-safe, field-level description of the failure.
func (f *Failure) Reason() string {
	switch f.Kind {
	case KindEmailInvalid:
		return "Must be a valid email address"
	case KindTooShort:
		return fmt.Sprintf("Minimum %d characters", f.limit)
	case KindTooLong:
		return fmt.Sprintf("Maximum %d characters", f.limit)
	case KindInvalidCharacters:
		return "Only letters, spaces, hyphens and apostrophes are allowed"
	case KindMissingUppercase:
		return "Must contain at least one uppercase letter"
	case KindMissingLowercase:
		return "Must contain at least one lowercase letter"
	case KindMissingDigit:
		return "Must contain at least one digit"
	case KindMissingSymbol:
		return "Must contain at least one symbol (" + PasswordSymbols + ")"
	default:
		return "Invalid value"
	}
}

// AsFailure extracts a [*Failure] from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}

func fail(field string, kind Kind) *Failure {
	return &Failure{Field: field, Kind: kind}
}

func failLimit(field string, kind Kind, limit int) *Failure {
	return &Failure{Field: field, Kind: kind, limit: limit}
}
