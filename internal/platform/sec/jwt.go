// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [PasswordHasher] interface and the token
// issuer/verifier contracts declared by its consumers.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// # Token Kinds

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Token lifetimes.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Subject is the identity a token is issued for.
type Subject struct {
	ID    string
	Email string
	Role  Role
}

// Claims represents the payload embedded inside both token kinds.
//
// The registered claims carry sub, iss, aud, jti, iat and exp. Type is checked
// explicitly after the signature and expiry checks pass.
type Claims struct {
	jwt.RegisteredClaims

	Email string    `json:"email"`
	Role  Role      `json:"role"`
	Type  TokenType `json:"type"`
}

// AsSubject returns the identity the claims were issued for.
func (c *Claims) AsSubject() Subject {
	return Subject{ID: c.RegisteredClaims.Subject, Email: c.Email, Role: c.Role}
}

// # Token Failures

// TokenFailureKind enumerates why a token was rejected.
type TokenFailureKind int

const (
	TokenMalformed TokenFailureKind = iota + 1
	TokenExpired
	TokenWrongType
)

// String returns the snake_case kind name used in logs and metrics.
func (k TokenFailureKind) String() string {
	switch k {
	case TokenExpired:
		return "token_expired"
	case TokenWrongType:
		return "token_wrong_type"
	default:
		return "token_malformed"
	}
}

// TokenError is the typed verification failure.
type TokenError struct {
	Kind  TokenFailureKind
	Cause error
}

// Error implements error.
func (e *TokenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sec: %s: %v", e.Kind, e.Cause)
	}
	return "sec: " + e.Kind.String()
}

// Unwrap exposes the underlying jwt error.
func (e *TokenError) Unwrap() error { return e.Cause }

// AsTokenError extracts a [*TokenError] from err's chain.
func AsTokenError(err error) (*TokenError, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr, true
	}
	return nil, false
}

// # Token Service

// TokenConfig holds the construction parameters of a [TokenService].
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now overrides the wall clock. Nil uses time.Now.
	Now func() time.Time
}

// TokenService issues and verifies HS256 access and refresh tokens.
//
// # Two Secrets
//
// Access and refresh tokens are signed with distinct secrets, so a leaked
// access secret cannot mint refresh tokens and vice versa. The type claim is
// an independent second guard.
//
// TokenService is immutable after construction and safe for concurrent use.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

var (
	// ErrMissingSecret is returned when either signing secret is empty.
	ErrMissingSecret = errors.New("sec: access and refresh token secrets are required")

	// ErrSharedSecret is returned when both kinds would share one secret.
	ErrSharedSecret = errors.New("sec: access and refresh token secrets must differ")
)

// NewTokenService validates cfg and constructs the service. A missing or shared
// secret is a startup error.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSharedSecret
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("sec: token issuer and audience are required")
	}

	service := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           cfg.Now,
	}
	if service.accessTTL <= 0 {
		service.accessTTL = DefaultAccessTokenTTL
	}
	if service.refreshTTL <= 0 {
		service.refreshTTL = DefaultRefreshTokenTTL
	}
	if service.now == nil {
		service.now = time.Now
	}
	return service, nil
}

// IssueAccessToken signs an access token for subject. ttl <= 0 uses the
// configured default.
func (service *TokenService) IssueAccessToken(subject Subject, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = service.accessTTL
	}
	return service.issue(subject, TokenTypeAccess, ttl, service.accessSecret)
}

// IssueRefreshToken signs a refresh token for subject.
func (service *TokenService) IssueRefreshToken(subject Subject) (string, error) {
	return service.issue(subject, TokenTypeRefresh, service.refreshTTL, service.refreshSecret)
}

// VerifyAccessToken verifies tokenString as an access token.
func (service *TokenService) VerifyAccessToken(tokenString string) (*Claims, error) {
	return service.verify(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken verifies tokenString as a refresh token.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return service.verify(tokenString, TokenTypeRefresh)
}

func (service *TokenService) issue(subject Subject, tokenType TokenType, ttl time.Duration, secret []byte) (string, error) {
	currentTime := service.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
		},
		Email: subject.Email,
		Role:  subject.Role,
		Type:  tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", tokenType, err)
	}
	return signedToken, nil
}

// verify runs signature, issuer, audience and expiry checks against the secret
// of want, then checks the type claim.
//
// # Failure Classification
//
//  1. Valid signature but expired: [TokenExpired].
//  2. Valid under want's secret but carrying another type: [TokenWrongType].
//  3. Invalid signature but authentic under the sibling kind's secret with the
//     sibling type: [TokenWrongType].
//  4. Otherwise, an exp claim already in the past: [TokenExpired].
//  5. Anything else: [TokenMalformed].
func (service *TokenService) verify(tokenString string, want TokenType) (*Claims, error) {
	ownSecret, siblingSecret, siblingType := service.accessSecret, service.refreshSecret, TokenTypeRefresh
	if want == TokenTypeRefresh {
		ownSecret, siblingSecret, siblingType = service.refreshSecret, service.accessSecret, TokenTypeAccess
	}

	claims, err := service.parse(tokenString, ownSecret)
	if err == nil {
		if claims.Type != want {
			return nil, &TokenError{Kind: TokenWrongType, Cause: fmt.Errorf("got type %q, want %q", claims.Type, want)}
		}
		return claims, nil
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, &TokenError{Kind: TokenExpired, Cause: err}
	}

	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		if sibling, siblingErr := service.parse(tokenString, siblingSecret); siblingErr == nil && sibling.Type == siblingType {
			return nil, &TokenError{Kind: TokenWrongType, Cause: fmt.Errorf("%s token presented where %s token required", siblingType, want)}
		}
	}

	if service.expiredUnverified(tokenString) {
		return nil, &TokenError{Kind: TokenExpired, Cause: err}
	}

	return nil, &TokenError{Kind: TokenMalformed, Cause: err}
}

func (service *TokenService) parse(tokenString string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(service.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}
	return claims, nil
}

// expiredUnverified reports whether the token's exp claim, read without
// verifying the signature, lies in the past.
func (service *TokenService) expiredUnverified(tokenString string) bool {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !service.now().Before(claims.ExpiresAt.Time)
}
