// Package services contains the application services of the authdesk CLI.
// This file defines the session manager: the single owner of the credential
// and the user record, and the only component that mutates them.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/client/client"
	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/dmitrijs2005/authdesk/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// State is the derived session state.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Listener is notified after every state transition or user record
// replacement.
type Listener func(state State, user *models.User)

// SessionManager holds the credential and the user record.
//
// The credential is kept in three places: memory, durable storage under
// common.CredentialKey, and the API client's interceptor. Every assignment
// writes all three and every teardown clears all three.
type SessionManager struct {
	client client.Client
	store  metadata.Repository
	logger logging.Logger

	initOnce sync.Once

	// commitMu keeps storage, interceptor and memory writes of one
	// commit or teardown together when logins race.
	commitMu sync.Mutex

	mu    sync.RWMutex
	state State
	token string
	user  *models.User

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSub   int
}

// NewSessionManager returns a manager in StateLoading. Call Initialize once
// before serving any user interaction.
func NewSessionManager(c client.Client, store metadata.Repository, logger logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SessionManager{
		client:    c,
		store:     store,
		logger:    logger,
		state:     StateLoading,
		listeners: make(map[int]Listener),
	}
}

// Initialize restores a persisted session. Without a stored credential it
// settles on StateAnonymous without touching the network. With one, it
// installs the credential and validates it with GET /me; any failure tears
// the session down silently. Only the first call does any work.
func (m *SessionManager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
}

func (m *SessionManager) initialize(ctx context.Context) {
	raw, err := m.store.Get(ctx, common.CredentialKey)
	if err != nil {
		m.logger.Warn(ctx, "failed to read stored credential", "error", err)
		m.teardown(ctx)
		return
	}

	if len(raw) == 0 {
		m.apply(StateAnonymous, "", nil)
		m.notify(StateAnonymous, nil)
		return
	}

	token := string(raw)
	m.commitMu.Lock()
	m.client.SetCredential(token)
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.commitMu.Unlock()

	user, err := m.client.Me(ctx)
	if err != nil {
		m.logger.Info(ctx, "stored credential rejected, signing out", "error", err)
		m.teardown(ctx)
		return
	}

	m.commitMu.Lock()
	m.apply(StateAuthenticated, token, user)
	m.commitMu.Unlock()
	m.notify(StateAuthenticated, user)
	m.logger.Info(ctx, "session restored", "user", user.Username)
}

// Login exchanges email and password for a credential and fetches the user
// record with it before anything is committed. Nothing is persisted or
// installed unless both calls succeed.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	const op = "login"

	tok, err := m.client.Login(ctx, email, password)
	if err != nil {
		return newOpError(op, "Login failed", err)
	}

	user, err := m.client.Me(client.WithCredential(ctx, tok.AccessToken))
	if err != nil {
		return newOpError(op, "Login failed", err)
	}

	if err := m.commit(ctx, tok.AccessToken, user); err != nil {
		return newOpError(op, "Login failed", err)
	}
	m.notify(StateAuthenticated, user)

	m.logger.Info(ctx, "signed in", "user", user.Username, "admin", user.IsAdmin)
	return nil
}

// Register creates the account and then logs in with the same credentials.
// A registration failure is returned without attempting the login.
func (m *SessionManager) Register(ctx context.Context, email, username, password string) error {
	reg := models.Registration{Email: email, Username: username, Password: password}
	if _, err := m.client.Register(ctx, reg); err != nil {
		return newOpError("register", "Registration failed", err)
	}
	m.logger.Info(ctx, "registered", "user", username)

	return m.Login(ctx, email, password)
}

// Logout ends the session locally. It never fails: a storage error is
// logged and the in-memory session is cleared regardless.
func (m *SessionManager) Logout(ctx context.Context) {
	m.teardown(ctx)
	m.logger.Info(ctx, "signed out")
}

// UpdateProfile sends a partial profile update and replaces the user record
// with the server's response.
func (m *SessionManager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	const op = "update profile"

	if !m.IsAuthenticated() {
		return newOpError(op, "Profile update failed", common.ErrNotLoggedIn)
	}

	user, err := m.client.UpdateProfile(ctx, upd)
	if err != nil {
		return newOpError(op, "Profile update failed", err)
	}

	m.mu.Lock()
	stillSignedIn := m.state == StateAuthenticated
	if stillSignedIn {
		m.user = user
	}
	m.mu.Unlock()

	if stillSignedIn {
		m.notify(StateAuthenticated, user)
	}
	return nil
}

// ChangePassword changes the account password. The credential and the user
// record are left as they are.
func (m *SessionManager) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	const op = "change password"

	if !m.IsAuthenticated() {
		return newOpError(op, "Password change failed", common.ErrNotLoggedIn)
	}

	if err := m.client.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		return newOpError(op, "Password change failed", err)
	}
	return nil
}

// Protected calls the API's protected route with the active credential and
// returns its greeting.
func (m *SessionManager) Protected(ctx context.Context) (string, error) {
	msg, err := m.client.Protected(ctx)
	if err != nil {
		return "", newOpError("protected", "Request failed", err)
	}
	return msg, nil
}

// Ping proxies a liveness check to the API client.
func (m *SessionManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx)
}

func (m *SessionManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Loading reports whether Initialize has not completed yet.
func (m *SessionManager) Loading() bool {
	return m.State() == StateLoading
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// User returns a copy of the user record, or nil when signed out.
func (m *SessionManager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

func (m *SessionManager) Credential() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// ExpiresAt reads the exp claim of the credential without verifying it.
// ok is false when signed out or when the credential is not a JWT with exp.
func (m *SessionManager) ExpiresAt() (time.Time, bool) {
	token := m.Credential()
	if token == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Subscribe registers fn and returns a func that removes it. Listeners run
// on the goroutine that caused the change, after the session lock is
// released.
func (m *SessionManager) Subscribe(fn Listener) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.listeners, id)
			m.subMu.Unlock()
		})
	}
}

// commit persists token, installs it on the interceptor and records user.
// If persisting fails nothing else changes.
func (m *SessionManager) commit(ctx context.Context, token string, user *models.User) error {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if err := m.store.Set(ctx, common.CredentialKey, []byte(token)); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	m.client.SetCredential(token)
	m.apply(StateAuthenticated, token, user)
	return nil
}

// teardown clears the credential everywhere and settles on StateAnonymous.
// It is safe to run repeatedly.
func (m *SessionManager) teardown(ctx context.Context) {
	m.commitMu.Lock()
	if err := m.store.Delete(ctx, common.CredentialKey); err != nil {
		m.logger.Error(ctx, "failed to remove stored credential", "error", err)
	}
	m.client.ClearCredential()
	m.apply(StateAnonymous, "", nil)
	m.commitMu.Unlock()

	m.notify(StateAnonymous, nil)
}

func (m *SessionManager) apply(state State, token string, user *models.User) {
	m.mu.Lock()
	m.state = state
	m.token = token
	m.user = user
	m.mu.Unlock()
}

func (m *SessionManager) notify(state State, user *models.User) {
	m.subMu.Lock()
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(state, user.Clone())
	}
}
