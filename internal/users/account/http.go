// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/motofleet/internal/platform/middleware"
	requestutil "github.com/taibuivan/motofleet/internal/platform/request"
	"github.com/taibuivan/motofleet/internal/platform/respond"
	"github.com/taibuivan/motofleet/internal/platform/sec"
)

// BasePath is where [Handler.Routes] is mounted.
const BasePath = "/users"

// Handler implements the HTTP layer for account administration.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account endpoints.
//
// # Endpoints
//   - GET    /     : Account count (ADMIN).
//   - POST   /     : Create an account with any role (ADMIN).
//   - GET    /{id} : Fetch one account (ADMIN, MANAGER).
//   - PUT    /{id} : Replace names, email and role (ADMIN).
//   - DELETE /{id} : Delete an account (ADMIN).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	adminOnly := middleware.RequireRoles(sec.RoleAdmin)
	staff := middleware.RequireRoles(sec.RoleAdmin, sec.RoleManager)

	router.With(adminOnly).Get("/", handler.summary)
	router.With(adminOnly).Post("/", handler.create)
	router.With(staff).Get("/{id}", handler.get)
	router.With(adminOnly).Put("/{id}", handler.replace)
	router.With(adminOnly).Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,max=320"`
	Password  string `json:"password" validate:"required,max=128"`
	Role      string `json:"role" validate:"required"`
}

type replaceRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,max=320"`
	Role      string `json:"role" validate:"required"`
}

/*
GET /users.

Response:
  - 200: Summary
  - 403: FORBIDDEN unless ADMIN
*/
func (handler *Handler) summary(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.accountService.Summary(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

/*
POST /users.

Request:
  - Body: createRequest

Response:
  - 201: auth.User
  - 400: VALIDATION_ERROR
  - 409: CONFLICT on duplicate email
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Create(request.Context(), CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /users/{id}.

Response:
  - 200: auth.User
  - 400: VALIDATION_ERROR for a non-UUID id
  - 404: NOT_FOUND
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PUT /users/{id}.

Request:
  - Body: replaceRequest

Response:
  - 200: auth.User
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
  - 409: CONFLICT when the new email is taken
*/
func (handler *Handler) replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input replaceRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Replace(request.Context(), id, ReplaceInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /users/{id}.

Response:
  - 204: No Content
  - 403: FORBIDDEN when deleting oneself
  - 404: NOT_FOUND
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Delete(request.Context(), identity.ID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
