// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/sec"
	"github.com/taibuivan/motofleet/internal/platform/validate"
	"github.com/taibuivan/motofleet/internal/users/auth"
	"github.com/taibuivan/motofleet/internal/users/credential"
)

// # Service Layer

// Service orchestrates administrative account management.
type Service struct {
	users  auth.UserRepository
	hasher sec.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(users auth.UserRepository, hasher sec.PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// # Queries

/*
Summary returns the number of stored identities.

Parameters:
  - context: context.Context

Returns:
  - Summary: Aggregate counts
  - error: Retrieval failures
*/
func (service *Service) Summary(context context.Context) (Summary, error) {
	total, err := service.users.Count(context)
	if err != nil {
		return Summary{}, fmt.Errorf("account_service_summary_failed: %w", err)
	}
	return Summary{Total: total}, nil
}

/*
Get retrieves one identity by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *auth.User: Hydrated entity
  - error: NOT_FOUND or retrieval failures
*/
func (service *Service) Get(context context.Context, id string) (*auth.User, error) {
	return service.users.FindByID(context, id)
}

// # Commands

/*
Create provisions an identity with any role.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *auth.User: The stored entity
  - error: VALIDATION_ERROR, CONFLICT or persistence failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*auth.User, error) {
	validator := &validate.Validator{}
	names := parseNames(validator, input.FirstName, input.LastName)
	email, err := credential.NewEmail(input.Email)
	validator.Check(err)
	password, err := credential.NewPassword(input.Password)
	validator.Check(err)
	role := parseRole(validator, input.Role)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.provision(context, names, email, password, role)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "account_created", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

/*
Replace overwrites the names, email and role of an identity. ID, CreatedAt and
the password hash are preserved.

Parameters:
  - context: context.Context
  - id: string
  - input: ReplaceInput

Returns:
  - *auth.User: The replaced entity
  - error: VALIDATION_ERROR, NOT_FOUND, CONFLICT or persistence failures
*/
func (service *Service) Replace(context context.Context, id string, input ReplaceInput) (*auth.User, error) {
	validator := &validate.Validator{}
	names := parseNames(validator, input.FirstName, input.LastName)
	email, err := credential.NewEmail(input.Email)
	validator.Check(err)
	role := parseRole(validator, input.Role)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	current, err := service.users.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if current.Email != email.String() {
		taken, err := service.users.ExistsByEmail(context, email)
		if err != nil {
			return nil, fmt.Errorf("account_service_replace_lookup_failed: %w", err)
		}
		if taken {
			return nil, apperr.Conflict("Email already registered")
		}
	}

	replaced, err := current.Replace(auth.Replacement{
		FirstName: names.first,
		LastName:  names.last,
		Email:     email,
		Role:      role,
	}, service.now())
	if err != nil {
		return nil, err
	}

	if err := service.users.Update(context, replaced); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "account_replaced", slog.String("user_id", replaced.ID), slog.String("role", string(replaced.Role)))
	return replaced, nil
}

/*
Delete removes an identity. Administrators cannot delete themselves.

Parameters:
  - context: context.Context
  - actorID: string (the authenticated administrator)
  - id: string

Returns:
  - error: FORBIDDEN, NOT_FOUND or persistence failures
*/
func (service *Service) Delete(context context.Context, actorID, id string) error {
	if actorID == id {
		return apperr.Forbidden("Administrators cannot delete their own account")
	}
	if err := service.users.Delete(context, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "account_deleted", slog.String("user_id", id), slog.String("actor_id", actorID))
	return nil
}

// # Bootstrap

/*
SeedAdmin creates the first ADMIN of an empty store.

Description: Running it again with the same email is a no-op. Running it
against a populated store with a new email fails with [ErrAlreadySeeded].

Parameters:
  - context: context.Context
  - input: SeedInput

Returns:
  - SeedResult: Whether an account was created
  - error: VALIDATION_ERROR, ErrAlreadySeeded or persistence failures
*/
func (service *Service) SeedAdmin(context context.Context, input SeedInput) (SeedResult, error) {
	validator := &validate.Validator{}
	names := parseNames(validator, input.FirstName, input.LastName)
	email, err := credential.NewEmail(input.Email)
	validator.Check(err)
	password, err := credential.NewPassword(input.Password)
	validator.Check(err)

	if err := validator.Err(); err != nil {
		return SeedResult{}, err
	}

	existing, err := service.users.FindByEmail(context, email)
	if err == nil {
		return SeedResult{Created: false, User: existing}, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return SeedResult{}, fmt.Errorf("account_service_seed_lookup_failed: %w", err)
	}

	total, err := service.users.Count(context)
	if err != nil {
		return SeedResult{}, fmt.Errorf("account_service_seed_count_failed: %w", err)
	}
	if total > 0 {
		return SeedResult{}, ErrAlreadySeeded
	}

	user, err := service.provision(context, names, email, password, sec.RoleAdmin)
	if err != nil {
		return SeedResult{}, err
	}

	service.logger.InfoContext(context, "admin_seeded", slog.String("user_id", user.ID))
	return SeedResult{Created: true, User: user}, nil
}

// # Helpers

type nameParts struct {
	first credential.Name
	last  credential.Name
}

func parseNames(validator *validate.Validator, first, last string) nameParts {
	firstName, err := credential.NewName(auth.FieldFirstName, first)
	validator.Check(err)
	lastName, err := credential.NewName(auth.FieldLastName, last)
	validator.Check(err)
	return nameParts{first: firstName, last: lastName}
}

func parseRole(validator *validate.Validator, raw string) sec.Role {
	role, _ := sec.ParseRole(raw)
	validator.OneOf(auth.FieldRole, string(role), sec.RoleNames()...)
	return role
}

func (service *Service) provision(context context.Context, names nameParts, email credential.Email, password credential.Password, role sec.Role) (*auth.User, error) {
	exists, err := service.users.ExistsByEmail(context, email)
	if err != nil {
		return nil, fmt.Errorf("account_service_exists_failed: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Email already registered")
	}

	digest, err := service.hasher.Hash(context, password.Reveal())
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	user, err := auth.NewUser(auth.UserParams{
		FirstName:    names.first,
		LastName:     names.last,
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		Now:          service.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}
	return user, nil
}
