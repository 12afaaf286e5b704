// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/middleware"
	"github.com/taibuivan/motofleet/internal/users/auth"
)

type httpFixture struct {
	*serviceFixture
	router http.Handler
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	fixture := &httpFixture{serviceFixture: newServiceFixture(t)}

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(middleware.AuthenticateConfig{
		Verifier:   fixture.tokens,
		Identities: fixture.service,
		Public:     middleware.NewPublicRoutes(auth.PublicRoutes()...),
	}))
	router.Mount(auth.BasePath, auth.NewHandler(fixture.service, auth.CookieConfig{TTL: 7 * 24 * time.Hour, Secure: true}).Routes())
	fixture.router = router
	return fixture
}

func (f *httpFixture) do(method, path, body string, decorate ...func(*http.Request)) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, nil)
	} else {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}
	for _, apply := range decorate {
		apply(request)
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

func bearer(token string) func(*http.Request) {
	return func(request *http.Request) {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func refreshCookie(recorder *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.RefreshTokenCookieName {
			return cookie
		}
	}
	return nil
}

/*
TestHandler_Login returns the token pair and sets the refresh cookie.
*/
func TestHandler_Login(t *testing.T) {
	f := newHTTPFixture(t)
	user := f.register(t, "ada@example.com")

	recorder := f.do(http.MethodPost, "/auth/login", `{"email":"ADA@example.com","password":"Str0ng!Pass"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, map[string]any{
		"id":        user.ID,
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"role":      "USER",
	}, body["user"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["refreshToken"])

	cookie := refreshCookie(recorder)
	require.NotNil(t, cookie)
	assert.Equal(t, body["refreshToken"], cookie.Value)
	assert.Equal(t, "/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 7*24*3600, cookie.MaxAge)
}

/*
TestHandler_Login_Failures returns the same body for every failure.
*/
func TestHandler_Login_Failures(t *testing.T) {
	f := newHTTPFixture(t)
	f.register(t, "ada@example.com")

	bodies := []string{
		`{"email":"ada@example.com","password":"Wr0ng!Pass"}`,
		`{"email":"grace@example.com","password":"Str0ng!Pass"}`,
		`{"email":"nope","password":"Str0ng!Pass"}`,
		`{"email":"` + strings.Repeat("a", 330) + `@example.com","password":"Str0ng!Pass"}`,
		`{"email":"ada@example.com","password":"` + strings.Repeat("x", 200) + `"}`,
		`{"email":"ada@example.com","password":`,
		`{"username":"ada","password":"Str0ng!Pass"}`,
	}
	for _, payload := range bodies {
		recorder := f.do(http.MethodPost, "/auth/login", payload)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.JSONEq(t, `{"message":"Invalid credentials","code":"INVALID_CREDENTIALS"}`, recorder.Body.String())
		assert.Nil(t, refreshCookie(recorder))
	}
}

/*
TestHandler_Refresh accepts the token from the body or the cookie.
*/
func TestHandler_Refresh(t *testing.T) {
	f := newHTTPFixture(t)
	f.register(t, "ada@example.com")

	login := f.do(http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"Str0ng!Pass"}`)
	require.Equal(t, http.StatusOK, login.Code)
	refreshToken := decodeBody(t, login)["refreshToken"].(string)

	fromBody := f.do(http.MethodPost, "/auth/refresh-token", `{"refreshToken":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, fromBody.Code)
	assert.NotEmpty(t, decodeBody(t, fromBody)["token"])

	fromCookie := f.do(http.MethodPost, "/auth/refresh-token", "", func(request *http.Request) {
		request.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookieName, Value: refreshToken})
	})
	require.Equal(t, http.StatusOK, fromCookie.Code)

	missing := f.do(http.MethodPost, "/auth/refresh-token", "")
	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired refresh token","code":"UNAUTHORIZED"}`, missing.Body.String())

	malformed := f.do(http.MethodPost, "/auth/refresh-token", `{"refreshToken":`)
	assert.Equal(t, http.StatusUnauthorized, malformed.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired refresh token","code":"UNAUTHORIZED"}`, malformed.Body.String())

	malformedWithCookie := f.do(http.MethodPost, "/auth/refresh-token", `not json`, func(request *http.Request) {
		request.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookieName, Value: refreshToken})
	})
	assert.Equal(t, http.StatusOK, malformedWithCookie.Code)

	accessAsRefresh := f.do(http.MethodPost, "/auth/refresh-token", `{"refreshToken":"`+decodeBody(t, login)["token"].(string)+`"}`)
	assert.Equal(t, http.StatusUnauthorized, accessAsRefresh.Code)
}

/*
TestHandler_Register covers creation, validation details and duplicates.
*/
func TestHandler_Register(t *testing.T) {
	f := newHTTPFixture(t)

	created := f.do(http.MethodPost, "/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"Ada@Example.com","password":"Str0ng!Pass"}`)
	require.Equal(t, http.StatusCreated, created.Code)
	body := decodeBody(t, created)
	assert.Equal(t, "ada@example.com", body["user"].(map[string]any)["email"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, created.Body.String(), "password")

	duplicate := f.do(http.MethodPost, "/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"Str0ng!Pass"}`)
	assert.Equal(t, http.StatusConflict, duplicate.Code)

	weak := f.do(http.MethodPost, "/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"grace@example.com","password":"str0ng!pass"}`)
	assert.Equal(t, http.StatusBadRequest, weak.Code)
	assert.JSONEq(t, `{
		"message":"Validation failed",
		"code":"VALIDATION_ERROR",
		"details":[{"field":"password","message":"Must contain at least one uppercase letter"}]
	}`, weak.Body.String())

	elevated := f.do(http.MethodPost, "/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"grace@example.com","password":"Str0ng!Pass","role":"ADMIN"}`)
	assert.Equal(t, http.StatusBadRequest, elevated.Code)

	unknownField := f.do(http.MethodPost, "/auth/register", `{"username":"ada"}`)
	assert.Equal(t, http.StatusBadRequest, unknownField.Code)
}

/*
TestHandler_Me requires a valid access token.
*/
func TestHandler_Me(t *testing.T) {
	f := newHTTPFixture(t)
	user := f.register(t, "ada@example.com")

	anonymous := f.do(http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
	assert.JSONEq(t, `{"message":"Unauthorized","code":"UNAUTHORIZED"}`, anonymous.Body.String())

	token, err := f.tokens.IssueAccessToken(user.Subject(), 0)
	require.NoError(t, err)

	recorder := f.do(http.MethodGet, "/auth/me", "", bearer(token))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, user.ID, decodeBody(t, recorder)["id"])
}

/*
TestHandler_Logout clears the cookie without requiring authentication.
*/
func TestHandler_Logout(t *testing.T) {
	f := newHTTPFixture(t)

	recorder := f.do(http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, recorder.Body.String())

	cookie := refreshCookie(recorder)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

/*
TestHandler_PasswordFlows covers change, forgot and reset over HTTP.
*/
func TestHandler_PasswordFlows(t *testing.T) {
	f := newHTTPFixture(t)
	user := f.register(t, "ada@example.com")
	token, err := f.tokens.IssueAccessToken(user.Subject(), 0)
	require.NoError(t, err)

	wrong := f.do(http.MethodPost, "/auth/change-password",
		`{"currentPassword":"Wr0ng!Pass","newPassword":"N3w!Password"}`, bearer(token))
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	changed := f.do(http.MethodPost, "/auth/change-password",
		`{"currentPassword":"Str0ng!Pass","newPassword":"N3w!Password"}`, bearer(token))
	require.Equal(t, http.StatusOK, changed.Code)

	for _, email := range []string{"ada@example.com", "nobody@example.com"} {
		forgot := f.do(http.MethodPost, "/auth/forgot-password", `{"email":"`+email+`"}`)
		require.Equal(t, http.StatusOK, forgot.Code)
		assert.JSONEq(t, `{"message":"If an account exists for this email, a reset link has been sent"}`, forgot.Body.String())
	}
	f.service.Wait()
	require.Len(t, f.mailer.Sent, 1)

	resetToken := strings.SplitN(f.mailer.Sent[0].Link, "?token=", 2)[1]
	reset := f.do(http.MethodPost, "/auth/reset-password", `{"token":"`+resetToken+`","password":"R3set!Password"}`)
	require.Equal(t, http.StatusOK, reset.Code)

	reused := f.do(http.MethodPost, "/auth/reset-password", `{"token":"`+resetToken+`","password":"R3set!Password"}`)
	assert.Equal(t, http.StatusNotFound, reused.Code)
}
