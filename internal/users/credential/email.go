// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"regexp"
	"strings"
)

// FieldEmail is the JSON field name for email input.
const FieldEmail = "email"

// emailRegex accepts the local@domain.tld shape. It is deliberately not a full
// RFC 5322 grammar.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a normalized email address.
type Email struct {
	value string
}

// NewEmail trims and lower-cases raw, then checks its shape.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !emailRegex.MatchString(normalized) {
		return Email{}, fail(FieldEmail, KindEmailInvalid)
	}
	return Email{value: normalized}, nil
}

// String returns the normalized address.
func (e Email) String() string { return e.value }

// IsZero reports whether e was never successfully constructed.
func (e Email) IsZero() bool { return e.value == "" }
