// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/motofleet/internal/platform/ctxutil"
	"github.com/taibuivan/motofleet/internal/platform/middleware"
	"github.com/taibuivan/motofleet/internal/platform/sec"
)

/*
TestRequireRoles covers permitted, denied and missing identities.
*/
func TestRequireRoles(t *testing.T) {
	guard := middleware.RequireRoles(sec.RoleManager, sec.RoleAdmin)
	handler := guard(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	serve := func(identity *ctxutil.Identity) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/users/1", nil)
		if identity != nil {
			request = request.WithContext(ctxutil.WithIdentity(request.Context(), *identity))
		}
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	// 1. Permitted roles pass through
	assert.Equal(t, http.StatusNoContent, serve(&ctxutil.Identity{ID: "1", Role: sec.RoleAdmin}).Code)
	assert.Equal(t, http.StatusNoContent, serve(&ctxutil.Identity{ID: "2", Role: sec.RoleManager}).Code)

	// 2. Other roles get a 403 naming the permitted set
	denied := serve(&ctxutil.Identity{ID: "3", Role: sec.RoleUser})
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.JSONEq(t, `{"message":"Requires one of roles: ADMIN, MANAGER","code":"FORBIDDEN"}`, denied.Body.String())

	// 3. Missing identity is treated as unauthenticated
	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)
}
