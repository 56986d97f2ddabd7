package backend

import (
	"fmt"
	"sync"

	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

// Manager holds the registered backends and tracks which one is active.
// The surrounding application selects the active backend; the session
// only ever asks for it.
type Manager struct {
	logger   *zap.Logger
	mu       sync.RWMutex
	backends map[string]domain.Backend
	activeID string
}

// NewManager creates an empty backend manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:   logger,
		backends: make(map[string]domain.Backend),
	}
}

// Register adds a backend under the given id, replacing any previous
// registration with the same id
func (m *Manager) Register(id string, b domain.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.backends[id] = b
	m.logger.Info("Backend registered", zap.String("id", id))
}

// SetActive selects the backend used for stream resolution and watched
// reporting
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.backends[id]; !ok {
		return fmt.Errorf("unknown backend %q", id)
	}
	m.activeID = id
	m.logger.Info("Active backend changed", zap.String("id", id))
	return nil
}

// Active returns the active backend and its id, or nil when none is
// selected
func (m *Manager) Active() (string, domain.Backend) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.activeID == "" {
		return "", nil
	}
	return m.activeID, m.backends[m.activeID]
}
