// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/database/schema"
	"github.com/taibuivan/motofleet/internal/platform/dberr"
	"github.com/taibuivan/motofleet/internal/platform/postgres"
	"github.com/taibuivan/motofleet/internal/platform/sec"
	"github.com/taibuivan/motofleet/internal/users/credential"
)

// resourceUser names the entity in NotFound/Conflict messages.
const resourceUser = "User"

var account = schema.UserAccount

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or SQLSTATE 23505) are mapped to
// [apperr.AppError] kinds through [dberr.Wrap] so no driver detail leaks.
type PostgresUserRepository struct {
	pool postgres.Querier
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool postgres.Querier) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
FindByID retrieves an identity by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, account.SelectList(), account.Table, account.ID)
	return repository.findOne(context, "postgres_user_repo_find_by_id_failed", query, id)
}

/*
FindByEmail retrieves an identity by its unique, normalized email address.

Parameters:
  - context: context.Context
  - email: credential.Email

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email credential.Email) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, account.SelectList(), account.Table, account.Email)
	return repository.findOne(context, "postgres_user_repo_find_by_email_failed", query, email.String())
}

/*
ExistsByEmail reports whether the email is already registered.
*/
func (repository *PostgresUserRepository) ExistsByEmail(context context.Context, email credential.Email) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, account.Table, account.Email)

	var exists bool
	if err := repository.pool.QueryRow(context, query, email.String()).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, resourceUser, "postgres_user_repo_exists_by_email_failed")
	}
	return exists, nil
}

/*
Create persists a new identity into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.Table, account.SelectList())

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return repository.wrapWrite(err, "postgres_user_repo_create_failed")
	}
	return nil
}

/*
Update replaces names, email and role of an existing identity.

Parameters:
  - context: context.Context
  - user: *User (replacement value; ID selects the row)

Returns:
  - error: apperr.NotFound, apperr.Conflict, or connectivity errors
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6 WHERE %s = $1`,
		account.Table,
		account.FirstName, account.LastName, account.Email, account.Role, account.UpdatedAt,
		account.ID,
	)

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		string(user.Role),
		user.UpdatedAt,
	)
	if err != nil {
		return repository.wrapWrite(err, "postgres_user_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceUser)
	}
	return nil
}

/*
UpdatePasswordHash replaces only the digest column.
*/
func (repository *PostgresUserRepository) UpdatePasswordHash(context context.Context, id, hash string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		account.Table, account.PasswordHash, account.UpdatedAt, account.ID)

	tag, err := repository.pool.Exec(context, query, id, hash, at)
	if err != nil {
		return dberr.Wrap(err, resourceUser, "postgres_user_repo_update_password_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceUser)
	}
	return nil
}

/*
Delete removes the identity row.
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, account.Table, account.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, resourceUser, "postgres_user_repo_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceUser)
	}
	return nil
}

/*
Count returns the number of identities.
*/
func (repository *PostgresUserRepository) Count(context context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, account.Table)

	var total int64
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, resourceUser, "postgres_user_repo_count_failed")
	}
	return total, nil
}

// # Helpers

func (repository *PostgresUserRepository) findOne(context context.Context, action, query string, argument any) (*User, error) {
	user, err := scanUser(repository.pool.QueryRow(context, query, argument))
	if err != nil {
		return nil, dberr.Wrap(err, resourceUser, action)
	}
	return user, nil
}

// wrapWrite maps the email unique constraint to a client-facing conflict.
func (repository *PostgresUserRepository) wrapWrite(err error, action string) error {
	if dberr.IsUniqueViolation(err, account.EmailKey) {
		return apperr.Conflict("Email already registered").WithCause(err)
	}
	return dberr.Wrap(err, resourceUser, action)
}

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var role string
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = sec.Role(role)
	return user, nil
}
