// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package authtest provides in-memory implementations of the auth stores and
// mailer for use in tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/motofleet/internal/platform/apperr"
	"github.com/taibuivan/motofleet/internal/users/auth"
	"github.com/taibuivan/motofleet/internal/users/credential"
)

// # Users

// Users is an in-memory [auth.UserRepository] that enforces unique emails.
type Users struct {
	mu    sync.Mutex
	byID  map[string]auth.User
	Fails error // returned by every call when set
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byID: make(map[string]auth.User)}
}

func (store *Users) FindByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.Fails != nil {
		return nil, store.Fails
	}
	user, ok := store.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return &user, nil
}

func (store *Users) FindByEmail(_ context.Context, email credential.Email) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.Fails != nil {
		return nil, store.Fails
	}
	for _, user := range store.byID {
		if user.Email == email.String() {
			found := user
			return &found, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *Users) ExistsByEmail(ctx context.Context, email credential.Email) (bool, error) {
	_, err := store.FindByEmail(ctx, email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (store *Users) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.Fails != nil {
		return store.Fails
	}
	if store.emailTaken(user.Email, "") {
		return apperr.Conflict("Email already registered")
	}
	store.byID[user.ID] = *user
	return nil
}

func (store *Users) Update(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.Fails != nil {
		return store.Fails
	}
	current, ok := store.byID[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	if store.emailTaken(user.Email, user.ID) {
		return apperr.Conflict("Email already registered")
	}
	current.FirstName = user.FirstName
	current.LastName = user.LastName
	current.Email = user.Email
	current.Role = user.Role
	current.UpdatedAt = user.UpdatedAt
	store.byID[user.ID] = current
	return nil
}

func (store *Users) UpdatePasswordHash(_ context.Context, id, hash string, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.Fails != nil {
		return store.Fails
	}
	current, ok := store.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	current.PasswordHash = hash
	current.UpdatedAt = at
	store.byID[id] = current
	return nil
}

func (store *Users) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.Fails != nil {
		return store.Fails
	}
	if _, ok := store.byID[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(store.byID, id)
	return nil
}

func (store *Users) Count(context.Context) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.Fails != nil {
		return 0, store.Fails
	}
	return int64(len(store.byID)), nil
}

// Put stores user directly, bypassing the uniqueness check.
func (store *Users) Put(user *auth.User) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.byID[user.ID] = *user
}

func (store *Users) emailTaken(email, exceptID string) bool {
	for id, user := range store.byID {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}

// # Reset Tokens

// ResetTokens is an in-memory single-use [auth.ResetTokenRepository]. TTLs are
// recorded but not enforced.
type ResetTokens struct {
	mu     sync.Mutex
	tokens map[string]string
	TTLs   map[string]time.Duration
}

// NewResetTokens returns an empty store.
func NewResetTokens() *ResetTokens {
	return &ResetTokens{tokens: make(map[string]string), TTLs: make(map[string]time.Duration)}
}

func (store *ResetTokens) Set(_ context.Context, token, userID string, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.tokens[token] = userID
	store.TTLs[token] = ttl
	return nil
}

func (store *ResetTokens) Consume(_ context.Context, token string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	userID, ok := store.tokens[token]
	if !ok {
		return "", apperr.NotFound("Reset token")
	}
	delete(store.tokens, token)
	return userID, nil
}

// # Mail

// Mail is one captured reset message.
type Mail struct {
	To   string
	Link string
}

// Mailer captures reset mail instead of sending it.
type Mailer struct {
	mu    sync.Mutex
	Sent  []Mail
	Fails error

	// Release, when set, holds every send until it is closed.
	Release chan struct{}
}

func (mailer *Mailer) SendPasswordReset(context context.Context, to, link string) error {
	if mailer.Release != nil {
		<-mailer.Release
	}
	if err := context.Err(); err != nil {
		return err
	}

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if mailer.Fails != nil {
		return mailer.Fails
	}
	mailer.Sent = append(mailer.Sent, Mail{To: to, Link: link})
	return nil
}

// Count returns how many mails were captured.
func (mailer *Mailer) Count() int {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	return len(mailer.Sent)
}

// Last returns the most recent captured mail.
func (mailer *Mailer) Last() (Mail, bool) {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if len(mailer.Sent) == 0 {
		return Mail{}, false
	}
	return mailer.Sent[len(mailer.Sent)-1], true
}
