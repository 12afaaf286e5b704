// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/motofleet/internal/users/credential"
)

// # User Data Access

// UserRepository defines the data access contract for identities.
//
// Missing rows are reported as apperr NotFound and duplicate emails as
// apperr Conflict. Implementations must be safe for concurrent use.
type UserRepository interface {

	/*
		FindByID returns the identity with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the identity with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: credential.Email

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email credential.Email) (*User, error)

	/*
		ExistsByEmail reports whether an identity uses the given email.

		Parameters:
		  - context: context.Context
		  - email: credential.Email

		Returns:
		  - bool: true if taken
		  - error: Database retrieval failures
	*/
	ExistsByEmail(context context.Context, email credential.Email) (bool, error)

	/*
		Create persists a brand-new identity.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update replaces the mutable fields of an existing identity.

		Parameters:
		  - context: context.Context
		  - user: *User (the replacement value)

		Returns:
		  - error: apperr.NotFound, apperr.Conflict, or persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePasswordHash replaces only the identity's password digest.

		Parameters:
		  - context: context.Context
		  - id: string
		  - hash: string
		  - at: time.Time (new UpdatedAt)

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdatePasswordHash(context context.Context, id, hash string, at time.Time) error

	/*
		Delete removes the identity permanently.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		Count returns the number of stored identities.

		Parameters:
		  - context: context.Context

		Returns:
		  - int64: total
		  - error: Database retrieval failures
	*/
	Count(context context.Context) (int64, error)
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Consume atomically retrieves and deletes the userID associated with a
		reset token, so a token can be redeemed at most once.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: apperr.NotFound when unknown or expired
	*/
	Consume(context context.Context, token string) (string, error)
}
