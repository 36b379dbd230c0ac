package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "folio-cli"
	keyringKey     = "api-token"

	stateDirName  = "folio"
	stateFileName = "state.json"
)

// KeyringStore is the default Store: token in the OS keychain/credential
// manager, flags in ~/.config/folio/state.json.
type KeyringStore struct {
	service   string
	statePath string
}

var _ Store = (*KeyringStore)(nil)

// New returns a KeyringStore with the default state file location
func New() (*KeyringStore, error) {
	statePath, err := defaultStatePath()
	if err != nil {
		return nil, err
	}
	return &KeyringStore{service: keyringService, statePath: statePath}, nil
}

// NewAt returns a KeyringStore with a custom state file path
func NewAt(statePath string) *KeyringStore {
	return &KeyringStore{service: keyringService, statePath: statePath}
}

func defaultStatePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", stateDirName, stateFileName), nil
}

// Token retrieves the credential from the OS keychain
func (s *KeyringStore) Token() (string, bool, error) {
	token, err := keyring.Get(s.service, keyringKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load token: %w", err)
	}
	return token, true, nil
}

// SetToken persists the credential in the OS keychain
func (s *KeyringStore) SetToken(token string) error {
	if err := keyring.Set(s.service, keyringKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// ClearToken removes the credential from the OS keychain
func (s *KeyringStore) ClearToken() error {
	if err := keyring.Delete(s.service, keyringKey); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already cleared
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Flag reads a control flag from the state file
func (s *KeyringStore) Flag(name string) (bool, error) {
	flags, err := s.loadFlags()
	if err != nil {
		return false, err
	}
	return flags[name], nil
}

// SetFlag sets a control flag in the state file
func (s *KeyringStore) SetFlag(name string) error {
	flags, err := s.loadFlags()
	if err != nil {
		return err
	}
	flags[name] = true
	return s.saveFlags(flags)
}

// ClearFlag clears a control flag in the state file
func (s *KeyringStore) ClearFlag(name string) error {
	flags, err := s.loadFlags()
	if err != nil {
		return err
	}
	if _, exists := flags[name]; !exists {
		return nil
	}
	delete(flags, name)
	return s.saveFlags(flags)
}

func (s *KeyringStore) loadFlags() (map[string]bool, error) {
	// A missing state file means no flags have ever been set
	if _, err := os.Stat(s.statePath); os.IsNotExist(err) {
		return map[string]bool{}, nil
	}

	data, err := os.ReadFile(s.statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	flags := map[string]bool{}
	if len(data) == 0 {
		return flags, nil
	}
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	return flags, nil
}

func (s *KeyringStore) saveFlags(flags map[string]bool) error {
	stateDir := filepath.Dir(s.statePath)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.statePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}
