// Package session owns the authenticated session: the access token, the
// user profile, and the record persisted across runs. All mutation goes
// through the store so readers never observe a half-applied transition.
package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
)

// authAPI is the slice of the API client the store needs.
type authAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Me(ctx context.Context) (*api.User, error)
}

// record is the persisted session file layout.
type record struct {
	Token string    `json:"token"`
	User  *api.User `json:"user,omitempty"`
}

// Store holds the current session and mirrors it to disk.
type Store struct {
	mu   sync.Mutex
	path string
	api  authAPI
	log  logger.Logger

	token         string
	authenticated bool
	user          *api.User
}

// NewStore creates a store backed by the file at path and rehydrates any
// previously saved session. A missing or unreadable file just means
// logged out.
func NewStore(path string, client authAPI, log logger.Logger) *Store {
	if log == nil {
		log = logger.Noop()
	}
	s := &Store{path: path, api: client, log: log}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Token == "" {
		s.log.Warn("discarding unreadable session file %s", s.path)
		_ = os.Remove(s.path)
		return
	}

	s.token = rec.Token
	s.authenticated = true
	s.user = rec.User
	s.log.Debug("restored session from %s", s.path)
}

// Login authenticates against the server. On success the token, flag,
// and persisted record change together; on failure the existing session
// is left exactly as it was. The returned user may be nil when the
// profile fetch fails after a successful token exchange; the session is
// still established in that case.
func (s *Store) Login(ctx context.Context, username, password string) (*api.User, error) {
	tokens, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = tokens.AccessToken
	s.authenticated = true
	s.user = nil
	if err := s.persist(); err != nil {
		s.log.Warn("session not persisted: %v", err)
	}
	s.mu.Unlock()

	// Profile is best effort on top of an accepted token. The Me call
	// reads the token back through this store, so it runs unlocked.
	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn("profile fetch after login failed: %v", err)
		return nil, nil
	}

	s.mu.Lock()
	s.user = user
	if err := s.persist(); err != nil {
		s.log.Warn("session not persisted: %v", err)
	}
	s.mu.Unlock()
	return user, nil
}

// Logout clears the session and removes the persisted record. Calling it
// while already logged out is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

// Invalidate drops a session the server no longer honors. Used when an
// authorized call comes back 401.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authenticated {
		s.log.Info("server rejected session token, signing out")
	}
	s.clear()
}

func (s *Store) clear() {
	s.token = ""
	s.authenticated = false
	s.user = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("session file not removed: %v", err)
	}
}

// Token implements api.TokenSource.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.authenticated
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// User returns the cached profile, which may be nil even when
// authenticated.
func (s *Store) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// RefreshUser re-fetches the profile for the current session.
func (s *Store) RefreshUser(ctx context.Context) (*api.User, error) {
	if !s.Authenticated() {
		return nil, errors.New(errors.ErrAuth,
			"Not logged in",
			"Run 'opsdeck login' to sign in")
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	if err := s.persist(); err != nil {
		s.log.Warn("session not persisted: %v", err)
	}
	return user, nil
}

// persist writes the session record with owner-only permissions. Caller
// holds the lock.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(record{Token: s.token, User: s.user}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}
