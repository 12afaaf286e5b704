// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldPassword is the JSON field name for password input.
const FieldPassword = "password"

// PasswordMinLength is the minimum rune count of a raw password.
const PasswordMinLength = 8

// PasswordSymbols is the fixed set of accepted password symbols.
const PasswordSymbols = "!@#$%^&*()_+-=[]{};':\",.<>/?\\|`~"

const redacted = "[REDACTED]"

// Password is a raw, not-yet-hashed password that satisfies the strength rules.
//
// It exists only long enough to be handed to a hasher. Its fmt and slog
// representations are redacted.
type Password struct {
	raw string
}

// NewPassword validates raw for field [FieldPassword].
func NewPassword(raw string) (Password, error) {
	return NewPasswordFor(FieldPassword, raw)
}

// NewPasswordFor validates raw, reporting failures against field.
//
// # Rule Order
//
// Rules are checked sequentially and only the first violation is returned:
// length, uppercase, lowercase, digit, symbol.
func NewPasswordFor(field, raw string) (Password, error) {
	if utf8.RuneCountInString(raw) < PasswordMinLength {
		return Password{}, failLimit(field, KindTooShort, PasswordMinLength)
	}
	if !strings.ContainsFunc(raw, unicode.IsUpper) {
		return Password{}, fail(field, KindMissingUppercase)
	}
	if !strings.ContainsFunc(raw, unicode.IsLower) {
		return Password{}, fail(field, KindMissingLowercase)
	}
	if !strings.ContainsFunc(raw, unicode.IsDigit) {
		return Password{}, fail(field, KindMissingDigit)
	}
	if !strings.ContainsAny(raw, PasswordSymbols) {
		return Password{}, fail(field, KindMissingSymbol)
	}
	return Password{raw: raw}, nil
}

// Reveal returns the plaintext for hashing. Do not store or log the result.
func (p Password) Reveal() string { return p.raw }

// String implements fmt.Stringer with a redacted value.
func (p Password) String() string { return redacted }

// GoString implements fmt.GoStringer with a redacted value.
func (p Password) GoString() string { return redacted }

// LogValue implements slog.LogValuer with a redacted value.
func (p Password) LogValue() slog.Value { return slog.StringValue(redacted) }
