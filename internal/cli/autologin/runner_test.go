package autologin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/folio-dev/folio/internal/cli/client"
	"github.com/folio-dev/folio/internal/cli/credstore"
	"github.com/folio-dev/folio/internal/cli/session"
)

type fakeTokenSource struct {
	mu    sync.Mutex
	calls int
	resp  *client.LoginResponse
	err   error
}

func (f *fakeTokenSource) DevToken(ctx context.Context) (*client.LoginResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeTokenSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSessions struct {
	mu       sync.Mutex
	sess     session.Session
	reverify int
}

func (f *fakeSessions) Current() session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess
}

func (f *fakeSessions) Reverify(ctx context.Context) error {
	f.mu.Lock()
	f.reverify++
	f.mu.Unlock()
	return nil
}

func (f *fakeSessions) set(sess session.Session) {
	f.mu.Lock()
	f.sess = sess
	f.mu.Unlock()
}

func (f *fakeSessions) reverifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reverify
}

func devResponse() *client.LoginResponse {
	return &client.LoginResponse{
		Token: "dev-token",
		User:  client.User{ID: "1", Email: "admin@example.com", Role: "admin"},
	}
}

func anonymousSettled() session.Session {
	return session.Session{}
}

func adminSession() session.Session {
	return session.Session{
		Authenticated: true,
		User:          &client.User{ID: "1", Email: "admin@example.com", Role: "admin"},
	}
}

func visitorSession() session.Session {
	return session.Session{
		Authenticated: true,
		User:          &client.User{ID: "2", Email: "visitor@example.com", Role: "user"},
	}
}

func TestAttempt_FetchesTokenAndReverifies(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 1 {
		t.Errorf("expected one token request, got %d", api.callCount())
	}
	if token, ok, _ := store.Token(); !ok || token != "dev-token" {
		t.Errorf("expected stored dev credential, got %q (ok=%v)", token, ok)
	}
	if sessions.reverifyCount() != 1 {
		t.Errorf("expected one re-verification, got %d", sessions.reverifyCount())
	}
}

func TestAttempt_DisabledRunnerIsInert(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, false, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 0 {
		t.Errorf("disabled runner made %d token requests", api.callCount())
	}
	if _, ok, _ := store.Token(); ok {
		t.Error("disabled runner stored a credential")
	}
}

func TestAttempt_SkipsWhileLoading(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: session.Session{Loading: true}}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 0 {
		t.Error("runner acted mid-verification")
	}
}

func TestAttempt_ManualLogoutOptOut(t *testing.T) {
	store := credstore.NewMemory()
	store.SetFlag(credstore.FlagManualLogout)
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 0 {
		t.Error("runner ignored the manual-logout opt-out")
	}
	if sessions.reverifyCount() != 0 {
		t.Error("runner re-verified despite the opt-out")
	}
}

func TestAttempt_ManualLogoutClearsStrayCredential(t *testing.T) {
	store := credstore.NewMemory()
	store.SetFlag(credstore.FlagManualLogout)
	store.SetToken("stray")
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if _, ok, _ := store.Token(); ok {
		t.Error("expected the stray credential to be cleared")
	}
	if api.callCount() != 0 || sessions.reverifyCount() != 0 {
		t.Error("opt-out cleanup must not trigger any request")
	}
}

func TestAttempt_AutoAuthDisabledFlag(t *testing.T) {
	store := credstore.NewMemory()
	store.SetFlag(credstore.FlagAutoAuthDisabled)
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 0 {
		t.Error("runner ignored the auto-auth-disabled flag")
	}
}

func TestAttempt_ExistingCredentialReverifiesWithoutNewToken(t *testing.T) {
	store := credstore.NewMemory()
	store.SetToken("existing")
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 0 {
		t.Errorf("expected no token request for an existing credential, got %d", api.callCount())
	}
	if sessions.reverifyCount() != 1 {
		t.Errorf("expected one re-verification, got %d", sessions.reverifyCount())
	}
	if token, _, _ := store.Token(); token != "existing" {
		t.Errorf("expected the existing credential untouched, got %q", token)
	}
}

func TestAttempt_AuthenticatedAdminStaysArmed(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: adminSession()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if api.callCount() != 0 {
		t.Error("runner acted on an authenticated session")
	}

	// The admin logs out without the opt-out flags (e.g. a cleared store);
	// an armed runner may act again.
	sessions.set(anonymousSettled())
	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if api.callCount() != 1 {
		t.Errorf("expected the armed runner to act, got %d calls", api.callCount())
	}
}

func TestAttempt_OrdinarySessionRetiresRunner(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: visitorSession()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	// Even back in an anonymous state the retired runner never re-triggers
	sessions.set(anonymousSettled())
	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 0 {
		t.Errorf("retired runner made %d token requests", api.callCount())
	}
}

func TestAttempt_TokenRequestFailureSurfaces(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeTokenSource{err: errors.New("dev token unavailable")}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err == nil {
		t.Fatal("expected the token request failure to surface")
	}

	if _, ok, _ := store.Token(); ok {
		t.Error("failed auto-login must not store a credential")
	}
	if sessions.reverifyCount() != 0 {
		t.Error("failed auto-login must not trigger re-verification")
	}
}

func TestAttempt_RepeatedCallsAreIdempotent(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeTokenSource{resp: devResponse()}
	sessions := &fakeSessions{sess: anonymousSettled()}
	r := NewRunner(store, api, sessions, true, zerolog.Nop())

	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	// A second pass sees the stored credential and re-verifies instead of
	// requesting another token
	if err := r.Attempt(context.Background()); err != nil {
		t.Fatalf("Attempt: %v", err)
	}

	if api.callCount() != 1 {
		t.Errorf("expected a single token request across passes, got %d", api.callCount())
	}
}
