// Package session owns the client's authentication state: the
// {Authenticated, User, Loading} triple every UI consumer reads, and the
// startup/login/logout transitions that are allowed to change it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/folio-dev/folio/internal/cli/client"
	"github.com/folio-dev/folio/internal/cli/credstore"
)

// RoleAdmin is the privileged role. It gates the admin capability surface
// and keeps the development auto-login running for authenticated sessions.
const RoleAdmin = "admin"

// notifyTimeout bounds the fire-and-forget logout notification
const notifyTimeout = 10 * time.Second

// Session is a snapshot of the authentication state.
// Loading is true until the first verification (or explicit login/logout)
// completes; once it is false, Authenticated and User reflect the last
// completed transition, never an in-flight value.
type Session struct {
	Authenticated bool
	User          *client.User
	Loading       bool
}

// API is the backend transport the manager drives
type API interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Verify(ctx context.Context, token string) (*client.User, error)
	Logout(ctx context.Context, token string) error
}

// Manager is the single authority over the session. All mutation of the
// credential store's token and flags flows through its operations (plus the
// auto-login's single write path).
type Manager struct {
	store credstore.Store
	api   API
	log   zerolog.Logger

	mu       sync.Mutex
	sess     Session
	started  bool
	inflight chan struct{} // non-nil while a verification is outstanding
}

// NewManager creates a Manager in the pre-startup state
func NewManager(store credstore.Store, api API, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		api:   api,
		log:   log,
		sess:  Session{Loading: true},
	}
}

// Current returns a snapshot of the session. Never blocks.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Startup reads the stored credential and verifies it against the backend.
// It runs at most one verification per process: concurrent callers collapse
// into the same in-flight verification and await its result, and later
// calls are no-ops.
func (m *Manager) Startup(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		wait := m.inflight
		m.mu.Unlock()
		return m.await(ctx, wait)
	}
	m.started = true
	done := make(chan struct{})
	m.inflight = done
	m.sess.Loading = true
	m.mu.Unlock()

	m.runVerification(ctx, done)
	return nil
}

// Reverify re-runs the startup verification sequence, e.g. after the
// development auto-login stored a fresh credential. It shares Startup's
// single-flight guard: a concurrent verification is awaited, not duplicated.
func (m *Manager) Reverify(ctx context.Context) error {
	m.mu.Lock()
	if m.inflight != nil {
		wait := m.inflight
		m.mu.Unlock()
		return m.await(ctx, wait)
	}
	m.started = true
	done := make(chan struct{})
	m.inflight = done
	m.sess.Loading = true
	m.mu.Unlock()

	m.runVerification(ctx, done)
	return nil
}

func (m *Manager) await(ctx context.Context, wait chan struct{}) error {
	if wait == nil {
		return nil
	}
	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runVerification performs one verification and always lands in a terminal
// loading=false state, whatever the outcome.
func (m *Manager) runVerification(ctx context.Context, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.inflight = nil
		m.mu.Unlock()
		close(done)
	}()

	token, ok, err := m.store.Token()
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to read stored credential")
		m.setAnonymous()
		return
	}
	if !ok {
		m.setAnonymous()
		return
	}

	user, err := m.api.Verify(ctx, token)
	switch {
	case err == nil:
		m.setAuthenticated(user)
	case errors.Is(err, client.ErrVerifyInvalid):
		// Stale credential: destroy it so the next startup goes straight
		// to anonymous. Flags are untouched.
		if clearErr := m.store.ClearToken(); clearErr != nil {
			m.log.Error().Err(clearErr).Msg("Failed to clear rejected credential")
		}
		m.log.Info().Msg("Stored credential rejected, cleared")
		m.setAnonymous()
	default:
		// Timeout or unreachable: the credential may still be good, keep it
		// for a later retry and fall back to anonymous for now.
		m.log.Warn().Err(err).Msg("Credential verification did not complete")
		m.setAnonymous()
	}
}

func (m *Manager) setAuthenticated(user *client.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{Authenticated: true, User: user, Loading: false}
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{Authenticated: false, User: nil, Loading: false}
}

// Login authenticates with the backend. Rejected credentials return
// (false, nil); transport failures return (false, err). In both failure
// cases the session and the credential store are left untouched. On success
// the credential is stored, the session becomes authenticated, and the
// manual-logout flag is cleared now that a credential exists.
func (m *Manager) Login(ctx context.Context, email, password string) (bool, error) {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrBadCredentials) {
			return false, nil
		}
		return false, err
	}

	if err := m.store.SetToken(resp.Token); err != nil {
		// Without a stored credential the session would not survive a
		// restart; treat this as a failed login rather than a half-login.
		return false, err
	}

	if _, ok, _ := m.store.Token(); ok {
		if err := m.store.ClearFlag(credstore.FlagManualLogout); err != nil {
			m.log.Error().Err(err).Msg("Failed to clear manual-logout flag")
		}
	}

	user := resp.User
	m.mu.Lock()
	m.started = true
	m.sess = Session{Authenticated: true, User: &user, Loading: false}
	m.mu.Unlock()

	m.log.Info().Str("email", user.Email).Msg("Logged in")
	return true, nil
}

// Logout transitions to anonymous immediately: the local state change and
// credential removal happen before the backend is notified, and the
// notification itself is fire-and-forget. Its failure is logged, never
// surfaced, and never reverses the local transition.
func (m *Manager) Logout(ctx context.Context) {
	token, hadToken, err := m.store.Token()
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to read credential during logout")
	}

	m.mu.Lock()
	m.started = true
	m.sess = Session{Authenticated: false, User: nil, Loading: false}
	m.mu.Unlock()

	if err := m.store.ClearToken(); err != nil {
		m.log.Error().Err(err).Msg("Failed to clear credential during logout")
	}
	if err := m.store.SetFlag(credstore.FlagManualLogout); err != nil {
		m.log.Error().Err(err).Msg("Failed to set manual-logout flag")
	}
	if err := m.store.SetFlag(credstore.FlagAutoAuthDisabled); err != nil {
		m.log.Error().Err(err).Msg("Failed to set auto-auth-disabled flag")
	}

	m.log.Info().Msg("Logged out")

	if !hadToken {
		return
	}

	// Best-effort revocation, detached from the caller's context so a
	// cancelled caller cannot abort it early.
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := m.api.Logout(notifyCtx, token); err != nil {
			m.log.Warn().Err(err).Msg("Logout notification failed")
		}
	}()
}

// AdminControls is the administrative capability surface. It exists only
// while the current session belongs to the privileged role; ordinary
// sessions never see it.
type AdminControls struct {
	m *Manager
}

// Admin returns the administrative controls, or ok=false when the current
// session is not an admin session.
func (m *Manager) Admin() (*AdminControls, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sess.Authenticated || m.sess.User == nil || m.sess.User.Role != RoleAdmin {
		return nil, false
	}
	return &AdminControls{m: m}, true
}

// Reverify forces a fresh credential verification
func (a *AdminControls) Reverify(ctx context.Context) error {
	return a.m.Reverify(ctx)
}

// EnableAutoAuth re-enables the development auto-login after it was
// disabled by an explicit logout
func (a *AdminControls) EnableAutoAuth() error {
	return a.m.store.ClearFlag(credstore.FlagAutoAuthDisabled)
}
