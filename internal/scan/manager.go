package scan

import "sync"

// Manager enforces the one-active-session-per-device rule. The camera
// hardware handle is exclusive, so starting a session on a device that
// already has one stops the old session and waits for it to release the
// handle before acquiring again.
type Manager struct {
	mu     sync.Mutex
	active map[string]*Session
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{active: make(map[string]*Session)}
}

// Start begins a session per cfg, replacing any live session on the same
// device.
func (m *Manager) Start(cfg Config) (*Session, error) {
	key := cfg.Device

	m.mu.Lock()
	prev := m.active[key]
	delete(m.active, key)
	m.mu.Unlock()

	if prev != nil {
		prev.Stop()
		prev.Wait()
	}

	s, err := Start(cfg)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active[key] = s
	m.mu.Unlock()

	go func() {
		s.Wait()
		m.mu.Lock()
		if m.active[key] == s {
			delete(m.active, key)
		}
		m.mu.Unlock()
	}()

	return s, nil
}

// Active returns the live session for a device, or nil.
func (m *Manager) Active(device string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[device]
}

// StopAll stops every live session and waits for their cameras to release.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.active))
	for _, s := range m.active {
		sessions = append(sessions, s)
	}
	m.active = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
		s.Wait()
	}
}
