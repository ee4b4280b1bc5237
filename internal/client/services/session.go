// Package services contains application services for the Videoflix client.
// This file defines the session manager: the single owner of the session
// state and the only writer of the stored token.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/BayerTobias/videoflix/internal/client/client"
	"github.com/BayerTobias/videoflix/internal/client/models"
	"github.com/BayerTobias/videoflix/internal/common"
	"github.com/BayerTobias/videoflix/internal/logging"
)

// State of the session state machine.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// AuthAPI is the part of the backend the session manager drives.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	DeleteAccount(ctx context.Context, currentPassword string) error
}

// TokenStore is the durable token slot plus remember-me credentials.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	Credentials(ctx context.Context) (*models.Credentials, error)
	SetCredentials(ctx context.Context, creds models.Credentials) error
	ClearCredentials(ctx context.Context) error
	Clear(ctx context.Context) error
}

// SessionManager owns the Anonymous/Authenticated state.
//
// Contract:
//   - Login: authenticate, persist the token, then fetch the profile.
//   - Logout: ask the server to drop the token, then reset locally no matter
//     what the server said.
//   - RestoreSession / CheckCurrentUser: revalidate the stored token with a
//     round trip; an Unauthorized answer drops it.
//   - DeleteAccount: on success wipe all local storage.
//   - Invalidate: forced drop used by the request interceptor.
//
// Methods are safe for concurrent use.
type SessionManager interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
	RestoreSession(ctx context.Context) (*models.User, error)
	CheckCurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	DeleteAccount(ctx context.Context, password string) error

	Remember(ctx context.Context, creds models.Credentials, enabled bool) error
	RememberedCredentials(ctx context.Context) (*models.Credentials, error)

	Invalidate(ctx context.Context, reason error)
	IsAuthenticated() bool
	State() State
	CurrentUser() *models.User
	TokenSource(ctx context.Context) oauth2.TokenSource
}

var _ client.Session = (SessionManager)(nil)

type sessionManager struct {
	api    AuthAPI
	store  TokenStore
	logger logging.Logger

	mu    sync.RWMutex
	state State
	user  *models.User
}

// NewSessionManager builds the manager in the Anonymous state. One instance
// is created at start-up and handed to the interceptor and the guard.
func NewSessionManager(api AuthAPI, store TokenStore, logger logging.Logger) SessionManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &sessionManager{api: api, store: store, logger: logger.With("component", "session")}
}

// Login never retries. On failure the state and the stored token are left
// as they were and the classified error is returned for the form to show.
func (m *sessionManager) Login(ctx context.Context, username, password string) (*models.User, error) {
	token, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.logger.Info(ctx, "login failed", "user", username, "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := m.store.SetToken(ctx, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	m.setAuthenticated(ctx, nil)

	// best effort: the session is valid even if the profile is not available yet
	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			m.Invalidate(ctx, err)
			return nil, fmt.Errorf("fetch profile: %w", err)
		}
		m.logger.Warn(ctx, "profile fetch after login failed", "error", err)
		return nil, nil
	}
	m.setAuthenticated(ctx, user)

	return m.CurrentUser(), nil
}

func (m *sessionManager) Logout(ctx context.Context) error {
	token, err := m.store.Token(ctx)
	if err != nil {
		m.logger.Warn(ctx, "read token before logout", "error", err)
	}

	var serverErr error
	if token != "" {
		serverErr = m.api.Logout(ctx)
	}

	m.Invalidate(ctx, errLogout)

	if serverErr != nil {
		m.logger.Warn(ctx, "server logout failed, local session cleared anyway", "error", serverErr)
		return fmt.Errorf("server logout: %w", serverErr)
	}
	return nil
}

// RestoreSession revalidates a token left over from a previous run. Without
// a stored token it returns client.ErrNoSession and makes no request.
func (m *sessionManager) RestoreSession(ctx context.Context) (*models.User, error) {
	return m.CheckCurrentUser(ctx)
}

// CheckCurrentUser asks the server who owns the stored token.
//
// Unauthorized drops the token. Any other failure (network, server error)
// leaves the stored token in place because its validity is unknown.
func (m *sessionManager) CheckCurrentUser(ctx context.Context) (*models.User, error) {
	token, err := m.store.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		m.Invalidate(ctx, client.ErrNoSession)
		return nil, client.ErrNoSession
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			m.Invalidate(ctx, err)
		}
		return nil, fmt.Errorf("check current user: %w", err)
	}

	m.setAuthenticated(ctx, user)
	return m.CurrentUser(), nil
}

func (m *sessionManager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	user, err := m.api.UpdateUser(ctx, upd)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			m.Invalidate(ctx, err)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	m.mu.Lock()
	if m.state == StateAuthenticated {
		u := *user
		m.user = &u
	}
	m.mu.Unlock()

	return m.CurrentUser(), nil
}

// DeleteAccount removes the account and, on success, every locally stored
// key including remembered credentials.
func (m *sessionManager) DeleteAccount(ctx context.Context, password string) error {
	if err := m.api.DeleteAccount(ctx, password); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			m.Invalidate(ctx, err)
		}
		return fmt.Errorf("delete account: %w", err)
	}

	m.Invalidate(ctx, errAccountDeleted)
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("wipe local storage: %w", err)
	}
	return nil
}

// Remember stores creds for pre-filling the login form, or removes them when
// enabled is false. It does not touch the session.
func (m *sessionManager) Remember(ctx context.Context, creds models.Credentials, enabled bool) error {
	if !enabled {
		return m.store.ClearCredentials(ctx)
	}
	return m.store.SetCredentials(ctx, creds)
}

func (m *sessionManager) RememberedCredentials(ctx context.Context) (*models.Credentials, error) {
	return m.store.Credentials(ctx)
}

// Invalidate moves to Anonymous and clears the stored token. Repeated calls
// are harmless.
func (m *sessionManager) Invalidate(ctx context.Context, reason error) {
	if err := m.store.ClearToken(ctx); err != nil {
		m.logger.Error(ctx, "clear stored token", "error", err)
	}

	m.mu.Lock()
	was := m.state
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()

	if was == StateAuthenticated {
		m.logger.Info(ctx, "session invalidated", "reason", errString(reason))
	}
}

func (m *sessionManager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

func (m *sessionManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentUser returns a copy of the cached profile, or nil.
func (m *sessionManager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// TokenSource exposes the stored token read-only. Token returns
// client.ErrNoSession when the slot is empty.
func (m *sessionManager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: m.store}
}

func (m *sessionManager) setAuthenticated(ctx context.Context, user *models.User) {
	m.mu.Lock()
	was := m.state
	m.state = StateAuthenticated
	if user != nil {
		u := *user
		m.user = &u
	}
	name := ""
	if m.user != nil {
		name = m.user.Username
	}
	m.mu.Unlock()

	if was != StateAuthenticated {
		m.logger.Info(ctx, "session authenticated", "user", name)
	}
}

type storeTokenSource struct {
	ctx   context.Context
	store TokenStore
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, client.ErrNoSession
	}
	return &oauth2.Token{AccessToken: token, TokenType: common.AuthTokenType}, nil
}

var (
	errLogout         = errors.New("logout")
	errAccountDeleted = errors.New("account deleted")
)

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
