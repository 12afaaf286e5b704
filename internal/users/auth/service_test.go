// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/sec"
	"github.com/taibuivan/motofleet/internal/users/auth"
	"github.com/taibuivan/motofleet/internal/users/auth/authtest"
	"github.com/taibuivan/motofleet/internal/users/credential"
)

const strongPassword = "Str0ng!Pass"

type serviceFixture struct {
	service *auth.Service
	users   *authtest.Users
	resets  *authtest.ResetTokens
	mailer  *authtest.Mailer
	tokens  *sec.TokenService
	hasher  sec.PasswordHasher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "auth-access-secret",
		RefreshSecret: "auth-refresh-secret",
		Issuer:        "motofleet-api",
		Audience:      "motofleet-clients",
	})
	require.NoError(t, err)

	fixture := &serviceFixture{
		users:  authtest.NewUsers(),
		resets: authtest.NewResetTokens(),
		mailer: &authtest.Mailer{},
		tokens: tokens,
		hasher: sec.NewArgon2Hasher(sec.Argon2Params{MemoryKiB: 1024, Time: 1, Threads: 1}, 2),
	}

	fixture.service, err = auth.NewService(context.Background(), auth.Dependencies{
		Users:       fixture.users,
		ResetTokens: fixture.resets,
		Hasher:      fixture.hasher,
		Tokens:      tokens,
		Mailer:      fixture.mailer,
		ResetURL:    "https://app.motofleet.app/reset-password",
	})
	require.NoError(t, err)
	return fixture
}

func mustName(t *testing.T, field, raw string) credential.Name {
	t.Helper()
	name, err := credential.NewName(field, raw)
	require.NoError(t, err)
	return name
}

func (f *serviceFixture) register(t *testing.T, email string) *auth.User {
	t.Helper()
	result, err := f.service.Register(context.Background(), auth.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  strongPassword,
	})
	require.NoError(t, err)
	return result.User
}

/*
TestService_Register normalizes the email, hashes the password and returns a
verifiable access token.
*/
func TestService_Register(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Register(context.Background(), auth.RegisterInput{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Password:  strongPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.Equal(t, "Ada", result.User.FirstName)
	assert.Equal(t, sec.RoleUser, result.User.Role)
	assert.NotContains(t, result.User.PasswordHash, strongPassword)

	claims, err := f.tokens.VerifyAccessToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.Subject(), claims.AsSubject())

	stored, err := f.users.FindByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	ok, err := f.hasher.Verify(context.Background(), strongPassword, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

/*
TestService_Register_Validation reports every invalid field at once.
*/
func TestService_Register_Validation(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		FirstName: "A",
		LastName:  "L0velace",
		Email:     "not-an-email",
		Password:  "weak",
		Role:      "ROOT",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, []apperr.FieldError{
		{Field: "firstName", Message: "Minimum 2 characters"},
		{Field: "lastName", Message: "Only letters, spaces, hyphens and apostrophes are allowed"},
		{Field: "email", Message: "Must be a valid email address"},
		{Field: "password", Message: "Minimum 8 characters"},
		{Field: "role", Message: "Must be one of: ADMIN, MANAGER, USER"},
	}, ae.Details)
}

/*
TestService_Register_Roles limits self-registration to USER.
*/
func TestService_Register_Roles(t *testing.T) {
	tests := []struct {
		role    string
		wantErr bool
	}{
		{"", false},
		{"USER", false},
		{"user", false},
		{"MANAGER", true},
		{"ADMIN", true},
	}

	for _, tt := range tests {
		t.Run("role_"+tt.role, func(t *testing.T) {
			f := newServiceFixture(t)
			result, err := f.service.Register(context.Background(), auth.RegisterInput{
				FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: strongPassword, Role: tt.role,
			})
			if tt.wantErr {
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sec.RoleUser, result.User.Role)
		})
	}
}

/*
TestService_Register_Duplicate returns a conflict for an existing email in any
letter case.
*/
func TestService_Register_Duplicate(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "ada@example.com")

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		FirstName: "Ada", LastName: "Byron", Email: "ADA@example.com", Password: strongPassword,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

/*
TestService_Login issues a pair bound to the stored identity.
*/
func TestService_Login(t *testing.T) {
	f := newServiceFixture(t)
	user := f.register(t, "Ada@Example.com")

	result, err := f.service.Login(context.Background(), auth.LoginInput{Email: "ADA@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)

	access, err := f.tokens.VerifyAccessToken(result.Token)
	require.NoError(t, err)
	refresh, err := f.tokens.VerifyRefreshToken(result.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, user.Subject(), access.AsSubject())
	assert.Equal(t, user.Subject(), refresh.AsSubject())
}

/*
TestService_Login_IdenticalFailures ensures no failure branch can be told apart
by the caller.
*/
func TestService_Login_IdenticalFailures(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "ada@example.com")

	attempts := map[string]auth.LoginInput{
		"wrong_password": {Email: "ada@example.com", Password: "Wr0ng!Pass"},
		"unknown_email":  {Email: "grace@example.com", Password: strongPassword},
		"malformed":      {Email: "not-an-email", Password: strongPassword},
		"empty":          {},
	}

	for name, input := range attempts {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Login(context.Background(), input)
			assert.Equal(t, apperr.InvalidCredentials(), apperr.As(err))
		})
	}
}

/*
TestService_Login_StoreFailure surfaces storage errors as internal failures.
*/
func TestService_Login_StoreFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.users.Fails = errors.New("connection refused")

	_, err := f.service.Login(context.Background(), auth.LoginInput{Email: "ada@example.com", Password: strongPassword})
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))
}

/*
TestService_Refresh mints a new access token without rotating the refresh token.
*/
func TestService_Refresh(t *testing.T) {
	f := newServiceFixture(t)
	user := f.register(t, "ada@example.com")

	login, err := f.service.Login(context.Background(), auth.LoginInput{Email: "ada@example.com", Password: strongPassword})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		token, err := f.service.Refresh(context.Background(), login.RefreshToken)
		require.NoError(t, err)

		claims, err := f.tokens.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.Subject(), claims.AsSubject())
	}
}

/*
TestService_Refresh_Rejected covers access tokens and garbage.
*/
func TestService_Refresh_Rejected(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "ada@example.com")

	login, err := f.service.Login(context.Background(), auth.LoginInput{Email: "ada@example.com", Password: strongPassword})
	require.NoError(t, err)

	for _, token := range []string{login.Token, "garbage", ""} {
		_, err := f.service.Refresh(context.Background(), token)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, apperr.KindUnauthenticated, ae.Kind)
		assert.Equal(t, auth.MessageInvalidRefreshToken, ae.Message)
	}
}

/*
TestService_LookupIdentity reads the role from the store.
*/
func TestService_LookupIdentity(t *testing.T) {
	f := newServiceFixture(t)
	user := f.register(t, "ada@example.com")

	promoted := *user
	promoted.Role = sec.RoleManager
	f.users.Put(&promoted)

	identity, err := f.service.LookupIdentity(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleManager, identity.Role)

	_, err = f.service.LookupIdentity(context.Background(), "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

/*
TestService_ChangePassword verifies the current password before replacing it.
*/
func TestService_ChangePassword(t *testing.T) {
	f := newServiceFixture(t)
	user := f.register(t, "ada@example.com")
	ctx := context.Background()

	err := f.service.ChangePassword(ctx, auth.ChangePasswordInput{UserID: user.ID, CurrentPassword: "Wr0ng!Pass", NewPassword: "N3w!Password"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	err = f.service.ChangePassword(ctx, auth.ChangePasswordInput{UserID: user.ID, CurrentPassword: strongPassword, NewPassword: "short"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = f.service.ChangePassword(ctx, auth.ChangePasswordInput{UserID: user.ID, CurrentPassword: strongPassword, NewPassword: strongPassword})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, f.service.ChangePassword(ctx, auth.ChangePasswordInput{UserID: user.ID, CurrentPassword: strongPassword, NewPassword: "N3w!Password"}))

	_, err = f.service.Login(ctx, auth.LoginInput{Email: "ada@example.com", Password: strongPassword})
	assert.True(t, apperr.IsKind(err, apperr.KindCredential))
	_, err = f.service.Login(ctx, auth.LoginInput{Email: "ada@example.com", Password: "N3w!Password"})
	assert.NoError(t, err)
}

/*
TestService_PasswordReset walks the forgot/reset flow and checks single use.
*/
func TestService_PasswordReset(t *testing.T) {
	f := newServiceFixture(t)
	user := f.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.service.RequestPasswordReset(ctx, "ADA@example.com"))
	f.service.Wait()

	mail, ok := f.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, user.Email, mail.To)

	link, err := url.Parse(mail.Link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)
	assert.Equal(t, constants.ResetTokenTTL, f.resets.TTLs[token])

	// A rejected password leaves the token redeemable.
	err = f.service.ResetPassword(ctx, token, "weak")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, f.service.ResetPassword(ctx, token, "R3set!Password"))

	err = f.service.ResetPassword(ctx, token, "An0ther!Password")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.service.Login(ctx, auth.LoginInput{Email: "ada@example.com", Password: "R3set!Password"})
	assert.NoError(t, err)
}

/*
TestService_RequestPasswordReset_Silent hides unknown emails and mail failures.
*/
func TestService_RequestPasswordReset_Silent(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RequestPasswordReset(ctx, "nobody@example.com"))
	f.service.Wait()
	assert.Empty(t, f.mailer.Sent)

	f.register(t, "ada@example.com")
	f.mailer.Fails = errors.New("smtp down")
	assert.NoError(t, f.service.RequestPasswordReset(ctx, "ada@example.com"))
	f.service.Wait()
	assert.Empty(t, f.mailer.Sent)

	err := f.service.RequestPasswordReset(ctx, "not-an-email")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

/*
TestService_RequestPasswordReset_Background answers before the mail is sent
and still delivers it once the request context is gone.
*/
func TestService_RequestPasswordReset_Background(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "ada@example.com")
	f.mailer.Release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.service.RequestPasswordReset(ctx, "ada@example.com"))
	cancel()

	assert.Zero(t, f.mailer.Count())

	close(f.mailer.Release)
	f.service.Wait()

	mail, ok := f.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", mail.To)
}

/*
TestUser_Replace preserves identity fields and keeps the digest out of JSON.
*/
func TestUser_Replace(t *testing.T) {
	f := newServiceFixture(t)
	user := f.register(t, "ada@example.com")
	later := user.CreatedAt.Add(time.Hour)

	replaced, err := user.Replace(auth.Replacement{
		FirstName: mustName(t, "firstName", "Augusta"),
		LastName:  mustName(t, "lastName", "King"),
		Email:     mustEmail(t, "augusta@example.com"),
		Role:      sec.RoleManager,
	}, later)
	require.NoError(t, err)

	assert.Equal(t, user.ID, replaced.ID)
	assert.Equal(t, user.CreatedAt, replaced.CreatedAt)
	assert.Equal(t, user.PasswordHash, replaced.PasswordHash)
	assert.Equal(t, later.UTC(), replaced.UpdatedAt)
	assert.Equal(t, "augusta@example.com", replaced.Email)
	assert.Equal(t, sec.RoleManager, replaced.Role)

	_, err = user.Replace(auth.Replacement{Email: mustEmail(t, "augusta@example.com"), Role: "ROOT"}, later)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
