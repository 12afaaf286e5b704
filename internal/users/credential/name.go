// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Name length bounds, counted in runes after trimming.
const (
	NameMinLength = 2
	NameMaxLength = 50
)

// Name is a trimmed personal name (first or last).
type Name struct {
	value string
}

// NewName validates raw as the value of field.
//
// Checks run in order: minimum length, maximum length, allowed characters.
func NewName(field, raw string) (Name, error) {
	trimmed := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(trimmed)

	if length < NameMinLength {
		return Name{}, failLimit(field, KindTooShort, NameMinLength)
	}
	if length > NameMaxLength {
		return Name{}, failLimit(field, KindTooLong, NameMaxLength)
	}

	for _, r := range trimmed {
		if !isNameRune(r) {
			return Name{}, fail(field, KindInvalidCharacters)
		}
	}

	return Name{value: trimmed}, nil
}

// String returns the trimmed name.
func (n Name) String() string { return n.value }

// isNameRune accepts any Unicode letter (so accented names pass), a space, a
// hyphen, or an apostrophe.
func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\''
}
