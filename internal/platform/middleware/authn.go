// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/ctxutil"
	"github.com/taibuivan/motofleet/internal/platform/metrics"
	"github.com/taibuivan/motofleet/internal/platform/respond"
	"github.com/taibuivan/motofleet/internal/platform/sec"
)

// # Public Route Allowlist

// Route is an exact (method, path) pair.
type Route struct {
	Method string
	Path   string
}

// String renders the route as "METHOD /path".
func (r Route) String() string { return r.Method + " " + r.Path }

// PublicRoutes is the set of routes that skip bearer authentication.
//
// Matching is exact on both method and path. "/auth/login" does not cover
// "/auth/login/" or "/auth/login/extra", and GET does not cover POST.
type PublicRoutes map[Route]struct{}

// NewPublicRoutes builds the allowlist from routes.
func NewPublicRoutes(routes ...Route) PublicRoutes {
	set := make(PublicRoutes, len(routes))
	for _, route := range routes {
		set[route] = struct{}{}
	}
	return set
}

// Allows reports whether (method, path) is allowlisted.
func (p PublicRoutes) Allows(method, path string) bool {
	_, ok := p[Route{Method: method, Path: path}]
	return ok
}

// Routes returns the allowlist sorted by path then method.
func (p PublicRoutes) Routes() []Route {
	routes := make([]Route, 0, len(p))
	for route := range p {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// # Authentication

// Failure reasons recorded in logs and metrics. Clients only ever see the
// generic 401 body.
const (
	ReasonMissingHeader    = "missing_header"
	ReasonMalformedHeader  = "malformed_header"
	ReasonIdentityNotFound = "identity_not_found"
)

// TokenVerifier verifies access tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing fakes to be injected during unit testing.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*sec.Claims, error)
}

// IdentityLookup resolves the subject of a verified token. A missing identity
// must be reported as an [apperr.KindNotFound] error.
type IdentityLookup interface {
	LookupIdentity(context context.Context, id string) (ctxutil.Identity, error)
}

// AuthenticateConfig wires the authentication stage.
type AuthenticateConfig struct {
	Verifier   TokenVerifier
	Identities IdentityLookup
	Public     PublicRoutes

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// unauthorized is the single body returned for every authentication failure.
var unauthorized = apperr.Unauthorized("Unauthorized")

// Authenticate requires a valid access token on every non-public route.
//
// # Flow
//  1. Allowlisted (method, path): pass through untouched.
//  2. Require 'Authorization: Bearer <token>'.
//  3. Verify it as an access token via [TokenVerifier].
//  4. Resolve the subject via [IdentityLookup]; the stored role is used.
//  5. Attach [ctxutil.Identity] to the request context.
//
// Every failure in steps 2-4 yields the same 401 body. The distinct reason is
// logged at warn level and counted. An identity lookup infrastructure failure
// is a 500, not a 401.
func Authenticate(cfg AuthenticateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			// ── 1. Public Routes ──────────────────────────────────────────────
			if cfg.Public.Allows(request.Method, request.URL.Path) {
				next.ServeHTTP(writer, request)
				return
			}

			reject := func(reason string) {
				ctxutil.GetLogger(ctx).WarnContext(ctx, "authentication_rejected", slog.String("reason", reason))
				cfg.Metrics.AuthFailure(reason)
				respond.Error(writer, request, unauthorized)
			}

			// ── 2. Header Extraction ──────────────────────────────────────────
			header := request.Header.Get(constants.HeaderAuthorization)
			if header == "" {
				reject(ReasonMissingHeader)
				return
			}

			token, ok := parseBearer(header)
			if !ok {
				reject(ReasonMalformedHeader)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := cfg.Verifier.VerifyAccessToken(token)
			if err != nil {
				reason := sec.TokenMalformed.String()
				if tokenErr, ok := sec.AsTokenError(err); ok {
					reason = tokenErr.Kind.String()
				}
				reject(reason)
				return
			}

			// ── 4. Identity Resolution ────────────────────────────────────────
			identity, err := cfg.Identities.LookupIdentity(ctx, claims.RegisteredClaims.Subject)
			if err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					reject(ReasonIdentityNotFound)
					return
				}
				if !apperr.IsAppError(err) {
					err = apperr.Internal(err)
				}
				respond.Error(writer, request, err)
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			AnnotateUser(ctx, identity.ID)
			ctx = ctxutil.WithIdentity(ctx, identity)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", identity.ID)))

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// parseBearer extracts the token from "Bearer <token>". The scheme is
// case-insensitive; the token must be non-empty and contain no spaces.
func parseBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
