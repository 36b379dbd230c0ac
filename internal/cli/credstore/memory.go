package credstore

import "sync"

// Memory is an in-memory Store for tests and ephemeral environments
type Memory struct {
	mu       sync.Mutex
	token    string
	hasToken bool
	flags    map[string]bool
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory Store
func NewMemory() *Memory {
	return &Memory{flags: make(map[string]bool)}
}

func (m *Memory) Token() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.hasToken, nil
}

func (m *Memory) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.hasToken = true
	return nil
}

func (m *Memory) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.hasToken = false
	return nil
}

func (m *Memory) Flag(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[name], nil
}

func (m *Memory) SetFlag(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[name] = true
	return nil
}

func (m *Memory) ClearFlag(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, name)
	return nil
}
