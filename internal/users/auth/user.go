// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity entity and the authentication flows.

It defines the core domain entity (User), its persistence contracts, and the
login, refresh, registration and password-management use cases.

# Architecture

Entities defined here are built only through validating factories. Raw input
is first converted into credential value objects; a User can therefore never
exist with an empty email or password hash.
*/
package auth

import (
	"time"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/ctxutil"
	"github.com/taibuivan/motofleet/internal/platform/sec"
	"github.com/taibuivan/motofleet/internal/users/credential"
	"github.com/taibuivan/motofleet/pkg/uuid"
)

// # Domain Entities

// User is the authenticated principal of the fleet platform.
//
// Values are immutable by convention: use [User.Replace] or
// [User.WithPasswordHash] to derive an updated copy.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.Role  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserParams are the validated inputs of [NewUser].
type UserParams struct {
	// ID is optional; a UUIDv7 is generated when empty.
	ID           string
	FirstName    credential.Name
	LastName     credential.Name
	Email        credential.Email
	PasswordHash string
	Role         sec.Role
	Now          time.Time
}

/*
NewUser is the only constructor of [User].

Returns:
  - *User: The new entity with CreatedAt == UpdatedAt == params.Now
  - error: VALIDATION_ERROR when email, password hash or role is missing/invalid
*/
func NewUser(params UserParams) (*User, error) {
	if params.Email.IsZero() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: credential.FieldEmail, Message: "This field is required"})
	}
	if params.PasswordHash == "" {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: credential.FieldPassword, Message: "This field is required"})
	}
	if !params.Role.Valid() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldRole, Message: "Must be one of: ADMIN, MANAGER, USER"})
	}

	id := params.ID
	if id == "" {
		id = uuid.New()
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           id,
		FirstName:    params.FirstName.String(),
		LastName:     params.LastName.String(),
		Email:        params.Email.String(),
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Replacement carries the mutable fields of a whole-object update.
type Replacement struct {
	FirstName credential.Name
	LastName  credential.Name
	Email     credential.Email
	Role      sec.Role
}

// Replace returns a new User with the replacement applied. ID, CreatedAt and
// PasswordHash are preserved.
func (u User) Replace(replacement Replacement, now time.Time) (*User, error) {
	replaced, err := NewUser(UserParams{
		ID:           u.ID,
		FirstName:    replacement.FirstName,
		LastName:     replacement.LastName,
		Email:        replacement.Email,
		PasswordHash: u.PasswordHash,
		Role:         replacement.Role,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	replaced.CreatedAt = u.CreatedAt
	return replaced, nil
}

// WithPasswordHash returns a copy carrying a new digest.
func (u User) WithPasswordHash(hash string, now time.Time) (*User, error) {
	if hash == "" {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: credential.FieldPassword, Message: "This field is required"})
	}
	u.PasswordHash = hash
	u.UpdatedAt = now.UTC()
	return &u, nil
}

// Identity returns the request identity view of the user.
func (u User) Identity() ctxutil.Identity {
	return ctxutil.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Subject returns the token subject view of the user.
func (u User) Subject() sec.Subject {
	return sec.Subject{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Profile returns the client-facing projection of the user.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role}
}

// Profile is the public shape of a user in auth responses.
type Profile struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Role      sec.Role `json:"role"`
}
