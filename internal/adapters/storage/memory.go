package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// Memory is an in-process backend for tests and --dry-run. Snapshots go
// through the JSON codec so it behaves like the durable backends.
type Memory struct {
	mu      *sync.Mutex
	docs    map[string][]byte
	profile string
}

// NewMemory crea un backend en memoria vacío para el perfil dado.
func NewMemory(profile string) *Memory {
	return &Memory{mu: &sync.Mutex{}, docs: make(map[string][]byte), profile: profile}
}

// ForProfile returns a handle on the same in-memory documents for another profile.
func (m *Memory) ForProfile(profile string) *Memory {
	return &Memory{mu: m.mu, docs: m.docs, profile: profile}
}

func (m *Memory) Load(_ context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	data, ok := m.docs[m.profile]
	m.mu.Unlock()
	if !ok {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	return decodeSnapshot(data)
}

func (m *Memory) Save(_ context.Context, snap domain.Snapshot) error {
	data, err := encodeSnapshot(snap, false)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[m.profile] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Close() error { return nil }
