// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles administrative management of user identities.

It lets administrators inspect, create, replace and delete accounts of any
role, and provides the bootstrap of the very first ADMIN.

# Architecture

  - Domain: This package depends on the auth package for the User entity and
    its repository contract.
  - Security: Every endpoint is gated by role; see [Handler.Routes].
*/
package account

import (
	"errors"

	"github.com/taibuivan/motofleet/internal/users/auth"
)

// # DTOs

// Summary is the aggregate view of the identity store.
type Summary struct {
	Total int64 `json:"total"`
}

// CreateInput holds the raw payload of an administrative account creation.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// ReplaceInput holds the raw payload of a whole-object account update.
type ReplaceInput struct {
	FirstName string
	LastName  string
	Email     string
	Role      string
}

// SeedInput describes the first administrator.
type SeedInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SeedResult reports what [Service.SeedAdmin] did.
type SeedResult struct {
	// Created is false when the administrator already existed.
	Created bool
	User    *auth.User
}

// ErrAlreadySeeded is returned by [Service.SeedAdmin] when other accounts
// exist but none uses the requested email.
var ErrAlreadySeeded = errors.New("account: accounts already exist; seed-admin only bootstraps an empty store")
