// Package identity manages the device-local writer identity and the chosen
// participant. Both survive restarts but are never shared across devices,
// and neither is an authorization mechanism: the writer ID only stamps "who
// last wrote this slot" on the ledger.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"kakeibo/internal/core"
)

type settings struct {
	WriterID    string `json:"writer_id"`
	Participant string `json:"participant"`
}

type Manager struct {
	mu   sync.Mutex
	path string
	s    settings
}

// Load reads the settings file, generating and persisting a fresh writer ID
// on first use.
func Load(path string) (*Manager, error) {
	m := &Manager{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &m.s); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// First run, nothing persisted yet.
	default:
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	if m.s.WriterID == "" {
		m.s.WriterID = uuid.NewString()
		if err := m.save(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// WriterID returns the opaque identifier stamped onto slot writes.
func (m *Manager) WriterID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.WriterID
}

// Participant returns the locally chosen participant, empty when none was
// chosen yet.
func (m *Manager) Participant() core.Participant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.Participant(m.s.Participant)
}

// ChooseParticipant persists the local participant choice.
func (m *Manager) ChooseParticipant(p core.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.Participant = string(p)
	return m.save()
}

func (m *Manager) save() error {
	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(m.s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("write settings %s: %w", m.path, err)
	}
	return nil
}
