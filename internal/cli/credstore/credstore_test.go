package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *KeyringStore {
	t.Helper()
	return NewAt(filepath.Join(t.TempDir(), "state.json"))
}

func TestFlags_UnsetIsFalse(t *testing.T) {
	s := newTestStore(t)

	set, err := s.Flag(FlagManualLogout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set {
		t.Error("expected unset flag to read false")
	}
}

func TestFlags_SetAndClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetFlag(FlagAutoAuthDisabled); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}

	set, err := s.Flag(FlagAutoAuthDisabled)
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if !set {
		t.Error("expected flag to read true after SetFlag")
	}

	if err := s.ClearFlag(FlagAutoAuthDisabled); err != nil {
		t.Fatalf("ClearFlag: %v", err)
	}

	set, err = s.Flag(FlagAutoAuthDisabled)
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if set {
		t.Error("expected flag to read false after ClearFlag")
	}
}

func TestFlags_ClearUnsetIsNoop(t *testing.T) {
	s := newTestStore(t)

	if err := s.ClearFlag(FlagManualLogout); err != nil {
		t.Fatalf("expected clearing an unset flag to succeed, got %v", err)
	}

	// The no-op must not create the state file
	if _, err := os.Stat(s.statePath); !os.IsNotExist(err) {
		t.Error("expected state file to not exist after no-op clear")
	}
}

func TestFlags_IndependentKeys(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetFlag(FlagManualLogout); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if err := s.SetFlag(FlagAutoAuthDisabled); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if err := s.ClearFlag(FlagManualLogout); err != nil {
		t.Fatalf("ClearFlag: %v", err)
	}

	set, err := s.Flag(FlagAutoAuthDisabled)
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if !set {
		t.Error("clearing one flag must not clear the other")
	}
}

func TestFlags_SurviveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := NewAt(path)
	if err := first.SetFlag(FlagManualLogout); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}

	// A fresh store over the same path simulates a process restart
	second := NewAt(path)
	set, err := second.Flag(FlagManualLogout)
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if !set {
		t.Error("expected flag to survive a store reload")
	}
}

func TestMemory_TokenLifecycle(t *testing.T) {
	m := NewMemory()

	if _, ok, err := m.Token(); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	if err := m.SetToken("abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	token, ok, err := m.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if !ok || token != "abc" {
		t.Errorf("expected token %q, got %q (ok=%v)", "abc", token, ok)
	}

	if err := m.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, ok, _ := m.Token(); ok {
		t.Error("expected token to be gone after ClearToken")
	}
}

func TestMemory_ClearTokenKeepsFlags(t *testing.T) {
	m := NewMemory()

	if err := m.SetToken("abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := m.SetFlag(FlagManualLogout); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}

	if err := m.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}

	set, err := m.Flag(FlagManualLogout)
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if !set {
		t.Error("clearing the token must not clear flags")
	}
}
