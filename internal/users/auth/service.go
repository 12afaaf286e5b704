// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/ctxutil"
	"github.com/taibuivan/motofleet/internal/platform/metrics"
	"github.com/taibuivan/motofleet/internal/platform/sec"
	"github.com/taibuivan/motofleet/internal/platform/validate"
	"github.com/taibuivan/motofleet/internal/users/credential"
)

// # Contracts & Types

// TokenIssuer is the subset of [sec.TokenService] used by the auth flows.
type TokenIssuer interface {
	IssueAccessToken(subject sec.Subject, ttl time.Duration) (string, error)
	IssueRefreshToken(subject sec.Subject) (string, error)
	VerifyRefreshToken(tokenString string) (*sec.Claims, error)
}

// Dependencies are the collaborators of [Service].
type Dependencies struct {
	Users       UserRepository
	ResetTokens ResetTokenRepository
	Hasher      sec.PasswordHasher
	Tokens      TokenIssuer
	Mailer      Mailer

	// Metrics may be nil.
	Metrics *metrics.Metrics

	// ResetURL is the client page that receives the reset token as ?token=.
	ResetURL string

	// Now overrides the wall clock. Nil uses time.Now.
	Now func() time.Time
}

// Service implements the login, refresh, registration and password use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	users       UserRepository
	resetTokens ResetTokenRepository
	hasher      sec.PasswordHasher
	tokens      TokenIssuer
	mailer      Mailer
	metrics     *metrics.Metrics
	resetURL    string
	now         func() time.Time

	// deliveries tracks reset mails still being sent.
	deliveries sync.WaitGroup

	// dummyDigest is verified against when the email is unknown so a failed
	// login costs one hash either way.
	dummyDigest string
}

// dummyPassword only feeds dummyDigest; it never matches a stored account.
const dummyPassword = "Dummy!Passw0rd-never-stored"

/*
NewService constructs the service and precomputes the dummy digest.

Parameters:
  - context: context.Context (bounds the initial hash)
  - deps: Dependencies

Returns:
  - *Service: Ready service
  - error: Missing collaborators or hashing failure
*/
func NewService(context context.Context, deps Dependencies) (*Service, error) {
	if deps.Users == nil || deps.Hasher == nil || deps.Tokens == nil {
		return nil, errors.New("auth: users, hasher and tokens are required")
	}
	if deps.ResetTokens == nil || deps.Mailer == nil {
		return nil, errors.New("auth: reset token store and mailer are required")
	}

	dummyDigest, err := deps.Hasher.Hash(context, dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to prepare dummy digest: %w", err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		users:       deps.Users,
		resetTokens: deps.ResetTokens,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		mailer:      deps.Mailer,
		metrics:     deps.Metrics,
		resetURL:    deps.ResetURL,
		now:         now,
		dummyDigest: dummyDigest,
	}, nil
}

// # Registration Flow

// RegisterInput holds the raw registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	// Role is optional. Only USER may be self-assigned.
	Role string
}

// RegisterResult is the outcome of a successful registration.
type RegisterResult struct {
	User  *User
	Token string
}

/*
Register validates, hashes, and persists a new USER identity.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Created entity and an access token
  - error: VALIDATION_ERROR, CONFLICT (email taken) or internal failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {
	validator := &validate.Validator{}

	firstName, err := credential.NewName(FieldFirstName, input.FirstName)
	validator.Check(err)
	lastName, err := credential.NewName(FieldLastName, input.LastName)
	validator.Check(err)
	email, err := credential.NewEmail(input.Email)
	validator.Check(err)
	password, err := credential.NewPassword(input.Password)
	validator.Check(err)

	role := sec.RoleUser
	if input.Role != "" {
		parsed, ok := sec.ParseRole(input.Role)
		validator.OneOf(FieldRole, string(parsed), sec.RoleNames()...)
		validator.Custom(FieldRole, ok && parsed != sec.RoleUser, "Self-registration is limited to role USER")
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	exists, err := service.users.ExistsByEmail(context, email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Email already registered")
	}

	digest, err := service.hasher.Hash(context, password.Reveal())
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user, err := NewUser(UserParams{
		FirstName:    firstName,
		LastName:     lastName,
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

	token, err := service.tokens.IssueAccessToken(user.Subject(), 0)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_token_failed: %w", err)
	}

	service.metrics.Registration()
	service.metrics.TokenIssued(string(sec.TokenTypeAccess))
	ctxutil.GetLogger(context).Info("user_registered", slog.String("user_id", user.ID))

	return &RegisterResult{User: user, Token: token}, nil
}

// # Authentication Flow

// LoginInput holds the raw credentials of a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the issued token pair.
type LoginResult struct {
	User         *User
	Token        string
	RefreshToken string
}

/*
Login verifies credentials and issues an access and refresh token pair.

Description: A malformed email, an unknown email and a wrong password all
return the same [apperr.InvalidCredentials]. Unknown emails are verified
against a dummy digest so the response time does not reveal which applies.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Identity and token pair
  - error: INVALID_CREDENTIALS or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	logger := ctxutil.GetLogger(context)

	email, err := credential.NewEmail(input.Email)
	if err != nil {
		return nil, service.rejectLogin(context, "malformed_email")
	}

	user, err := service.users.FindByEmail(context, email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, service.rejectLogin(context, "unknown_email")
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	ok, err := service.hasher.Verify(context, input.Password, user.PasswordHash)
	if errors.Is(err, sec.ErrInvalidHash) {
		logger.Error("stored_password_hash_invalid", slog.String("user_id", user.ID))
		service.metrics.Login(metrics.LoginInvalidCredentials)
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_verify_failed: %w", err)
	}
	if !ok {
		logger.Warn("login_rejected", slog.String("reason", "wrong_password"), slog.String("user_id", user.ID))
		service.metrics.Login(metrics.LoginInvalidCredentials)
		return nil, apperr.InvalidCredentials()
	}

	subject := user.Subject()
	accessToken, err := service.tokens.IssueAccessToken(subject, 0)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}
	refreshToken, err := service.tokens.IssueRefreshToken(subject)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	service.metrics.Login(metrics.LoginSuccess)
	service.metrics.TokenIssued(string(sec.TokenTypeAccess))
	service.metrics.TokenIssued(string(sec.TokenTypeRefresh))

	return &LoginResult{User: user, Token: accessToken, RefreshToken: refreshToken}, nil
}

// rejectLogin burns one verification against the dummy digest and returns the
// generic credential failure.
func (service *Service) rejectLogin(context context.Context, reason string) error {
	_, _ = service.hasher.Verify(context, dummyPassword+"x", service.dummyDigest)

	ctxutil.GetLogger(context).Warn("login_rejected", slog.String("reason", reason))
	service.metrics.Login(metrics.LoginInvalidCredentials)
	return apperr.InvalidCredentials()
}

// # Session Management

/*
Refresh exchanges a valid refresh token for a new access token.

Description: The refresh token itself is neither rotated nor revoked; it
stays usable until it expires.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - string: New access token carrying the refresh token's identity claims
  - error: UNAUTHORIZED ("Invalid or expired refresh token") or signing failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (string, error) {
	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		reason := sec.TokenMalformed.String()
		if tokenErr, ok := sec.AsTokenError(err); ok {
			reason = tokenErr.Kind.String()
		}
		ctxutil.GetLogger(context).Warn("refresh_rejected", slog.String("reason", reason))
		service.metrics.AuthFailure(reason)
		return "", apperr.Unauthorized(MessageInvalidRefreshToken)
	}

	accessToken, err := service.tokens.IssueAccessToken(claims.AsSubject(), 0)
	if err != nil {
		return "", fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	service.metrics.TokenRefresh()
	service.metrics.TokenIssued(string(sec.TokenTypeAccess))
	return accessToken, nil
}

/*
Me returns the stored identity of the authenticated caller.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - error: NOT_FOUND or retrieval failures
*/
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	return service.users.FindByID(context, userID)
}

// LookupIdentity resolves the identity attached to authenticated requests.
func (service *Service) LookupIdentity(context context.Context, id string) (ctxutil.Identity, error) {
	user, err := service.users.FindByID(context, id)
	if err != nil {
		return ctxutil.Identity{}, err
	}
	return user.Identity(), nil
}

// # Password Management

// ChangePasswordInput holds the payload of an authenticated password change.
type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

/*
ChangePassword replaces the caller's password after verifying the current one.

Parameters:
  - context: context.Context
  - input: ChangePasswordInput

Returns:
  - error: VALIDATION_ERROR, UNAUTHORIZED (wrong current password) or storage failures
*/
func (service *Service) ChangePassword(context context.Context, input ChangePasswordInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword)
	newPassword, err := credential.NewPasswordFor(FieldNewPassword, input.NewPassword)
	validator.Check(err)
	validator.Custom(FieldNewPassword, err == nil && input.NewPassword == input.CurrentPassword, "Must differ from the current password")

	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByID(context, input.UserID)
	if err != nil {
		return err
	}

	ok, err := service.hasher.Verify(context, input.CurrentPassword, user.PasswordHash)
	if err != nil && !errors.Is(err, sec.ErrInvalidHash) {
		return fmt.Errorf("auth_service_change_password_verify_failed: %w", err)
	}
	if !ok {
		return apperr.Unauthorized("Current password is incorrect")
	}

	return service.storePassword(context, user, newPassword)
}

/*
RequestPasswordReset starts the forgot-password flow.

Description: Unknown emails succeed silently so the endpoint cannot be used to
enumerate accounts. The mail is sent in the background so the response time
does not depend on SMTP; delivery failures are logged, not returned.

Parameters:
  - context: context.Context
  - rawEmail: string

Returns:
  - error: VALIDATION_ERROR on a malformed email, or storage failures
*/
func (service *Service) RequestPasswordReset(context context.Context, rawEmail string) error {
	logger := ctxutil.GetLogger(context)

	email, err := credential.NewEmail(rawEmail)
	if err != nil {
		return (&validate.Validator{}).Check(err).Err()
	}

	user, err := service.users.FindByEmail(context, email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		logger.Info("password_reset_unknown_email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	token, err := sec.GenerateSecureToken(constants.ResetTokenBytes)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokens.Set(context, token, user.ID, constants.ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	service.metrics.PasswordReset(metrics.ResetRequested)
	service.sendResetMail(context, user, service.resetLink(token))
	return nil
}

// sendResetMail delivers the reset link without blocking the caller. The
// request-scoped logger survives; the request cancellation does not.
func (service *Service) sendResetMail(parent context.Context, user *User, link string) {
	detached, cancel := context.WithTimeout(context.WithoutCancel(parent), constants.MailDeliveryTimeout)

	service.deliveries.Add(1)
	go func() {
		defer service.deliveries.Done()
		defer cancel()

		if err := service.mailer.SendPasswordReset(detached, user.Email, link); err != nil {
			ctxutil.GetLogger(detached).Error("password_reset_mail_failed",
				slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}()
}

// Wait blocks until every background reset mail has been handed off or failed.
func (service *Service) Wait() {
	service.deliveries.Wait()
}

/*
ResetPassword completes the forgot-password flow.

Description: The new password is validated before the token is consumed, so a
rejected password does not burn the link. A consumed token cannot be reused.

Parameters:
  - context: context.Context
  - token: string
  - rawPassword: string

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND (unknown, used or expired token) or storage failures
*/
func (service *Service) ResetPassword(context context.Context, token, rawPassword string) error {
	validator := &validate.Validator{}
	validator.Required(FieldToken, token)
	password, err := credential.NewPassword(rawPassword)
	validator.Check(err)

	if err := validator.Err(); err != nil {
		return err
	}

	userID, err := service.resetTokens.Consume(context, token)
	if err != nil {
		return err
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return err
	}

	if err := service.storePassword(context, user, password); err != nil {
		return err
	}

	service.metrics.PasswordReset(metrics.ResetCompleted)
	ctxutil.GetLogger(context).Info("password_reset_completed", slog.String("user_id", user.ID))
	return nil
}

// # Helpers

func (service *Service) storePassword(context context.Context, user *User, password credential.Password) error {
	digest, err := service.hasher.Hash(context, password.Reveal())
	if err != nil {
		return fmt.Errorf("auth_service_password_hash_failed: %w", err)
	}

	updated, err := user.WithPasswordHash(digest, service.now())
	if err != nil {
		return err
	}

	return service.users.UpdatePasswordHash(context, updated.ID, updated.PasswordHash, updated.UpdatedAt)
}

func (service *Service) resetLink(token string) string {
	return service.resetURL + "?token=" + url.QueryEscape(token)
}
