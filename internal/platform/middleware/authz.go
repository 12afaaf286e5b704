// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/ctxutil"
	"github.com/taibuivan/motofleet/internal/platform/respond"
	"github.com/taibuivan/motofleet/internal/platform/sec"
)

// RequireRoles blocks requests whose authenticated identity holds none of roles.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [ctxutil.Identity] exists in context. A missing identity is a
//     wiring error and is answered with 401 rather than a crash.
//  2. Check the identity's role against the permitted set.
//  3. If not permitted, abort with HTTP 403 naming the permitted roles.
func RequireRoles(roles ...sec.Role) func(http.Handler) http.Handler {
	allowed := sec.NewRoleSet(roles...)
	denied := apperr.RoleRequired(allowed.Names()...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, ok := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if !ok {
				ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "authorization_without_identity")
				respond.Error(writer, request, apperr.Unauthorized("Unauthorized"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !allowed.Contains(identity.Role) {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "authorization_denied",
					slog.String("role", identity.Role.String()),
				)
				respond.Error(writer, request, denied)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
