// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/middleware"
	requestutil "github.com/taibuivan/motofleet/internal/platform/request"
	"github.com/taibuivan/motofleet/internal/platform/respond"
	"github.com/taibuivan/motofleet/internal/platform/sec"
)

// BasePath is where [Handler.Routes] is mounted.
const BasePath = "/auth"

// # Definitions & Constructors

// CookieConfig controls the refresh token cookie.
type CookieConfig struct {
	// TTL is the cookie lifetime. It should match the refresh token lifetime.
	TTL time.Duration

	// Secure marks the cookie HTTPS-only. Disabled only in development.
	Secure bool
}

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// This handler manages the identity entry points (registration, login, token
// refresh, password recovery) and the caller's own profile.
type Handler struct {
	authService *Service
	cookie      CookieConfig
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, cookie CookieConfig) *Handler {
	if cookie.TTL <= 0 {
		cookie.TTL = sec.DefaultRefreshTokenTTL
	}
	return &Handler{authService: service, cookie: cookie}
}

// PublicRoutes lists the endpoints under [BasePath] reachable without an
// access token.
func PublicRoutes() []middleware.Route {
	return []middleware.Route{
		{Method: http.MethodPost, Path: BasePath + "/login"},
		{Method: http.MethodPost, Path: BasePath + "/refresh-token"},
		{Method: http.MethodPost, Path: BasePath + "/register"},
		{Method: http.MethodPost, Path: BasePath + "/logout"},
		{Method: http.MethodPost, Path: BasePath + "/forgot-password"},
		{Method: http.MethodPost, Path: BasePath + "/reset-password"},
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login           : Verifies credentials, returns a token pair.
//   - POST /refresh-token   : Exchanges a refresh token for an access token.
//   - POST /register        : Creates a USER account.
//   - POST /logout          : Clears the refresh cookie.
//   - POST /forgot-password : Mails a single-use reset link.
//   - POST /reset-password  : Redeems a reset link.
//   - GET  /me              : Returns the caller (authenticated).
//   - POST /change-password : Replaces the caller's password (authenticated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refresh)
	router.Post("/register", handler.register)
	router.Post("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	router.Get("/me", handler.me)
	router.Post("/change-password", handler.changePassword)

	return router
}

// # Request Payloads

// loginRequest carries no validate tags. Every shape problem must surface as
// the generic credential failure.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,max=320"`
	Password  string `json:"password" validate:"required,max=128"`
	Role      string `json:"role,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,max=320"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required,max=512"`
	Password string `json:"password" validate:"required,max=128"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,max=128"`
}

// # Response Payloads

type loginResponse struct {
	User         Profile `json:"user"`
	Token        string  `json:"token"`
	RefreshToken string  `json:"refreshToken"`
}

type registerResponse struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

/*
Login authenticates a user and returns a token pair.

POST /auth/login

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: loginResponse; the refresh token is also set as an HttpOnly cookie
  - 401: INVALID_CREDENTIALS for every failure, undecodable bodies included
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		input = loginRequest{}
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	middleware.AnnotateUser(request.Context(), result.User.ID)
	handler.setRefreshCookie(writer, result.RefreshToken)

	respond.OK(writer, loginResponse{
		User:         result.User.Profile(),
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
	})
}

/*
Refresh issues a new access token.

POST /auth/refresh-token

Description: The token is read from the JSON body and falls back to the
refresh cookie when the body is empty, undecodable or omits it.

Response:
  - 200: tokenResponse
  - 401: "Invalid or expired refresh token"
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
			input = refreshRequest{}
		}
	}

	refreshToken := input.RefreshToken
	if refreshToken == "" {
		if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
			refreshToken = cookie.Value
		}
	}
	if refreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized(MessageInvalidRefreshToken))
		return
	}

	token, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tokenResponse{Token: token})
}

/*
Register handles the creation of a new user account.

POST /auth/register

Request:
  - Body: registerRequest (FirstName, LastName, Email, Password, optional Role)

Response:
  - 201: registerResponse
  - 400: VALIDATION_ERROR with per-field details
  - 409: CONFLICT when the email is already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
		Role:      input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{User: result.User.Profile(), Token: result.Token})
}

/*
Me returns the authenticated caller.

GET /auth/me

Response:
  - 200: Profile
  - 401: UNAUTHORIZED
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Profile())
}

/*
Logout clears the refresh cookie.

POST /auth/logout

Description: Tokens are stateless; nothing is revoked server-side.

Response:
  - 200: MessageEnvelope
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   handler.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.Message(writer, MessageLoggedOut)
}

/*
ChangePassword updates the authenticated user's password.

POST /auth/change-password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: MessageEnvelope
  - 400: VALIDATION_ERROR for a weak new password
  - 401: UNAUTHORIZED when the current password is wrong
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), ChangePasswordInput{
		UserID:          identity.ID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MessagePasswordChanged)
}

/*
ForgotPassword initiates the password recovery flow.

POST /auth/forgot-password

Response:
  - 200: The same generic message whether or not the account exists
  - 400: VALIDATION_ERROR for a malformed email
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MessageResetRequested)
}

/*
ResetPassword completes the password recovery flow.

POST /auth/reset-password

Response:
  - 200: MessageEnvelope
  - 400: VALIDATION_ERROR for a weak password
  - 404: NOT_FOUND for an unknown, used or expired token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MessagePasswordReset)
}

func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, refreshToken string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    refreshToken,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   int(handler.cookie.TTL / time.Second),
		Secure:   handler.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
