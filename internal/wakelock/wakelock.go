// Package wakelock keeps the system awake while a notification blinks.
package wakelock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/blnd/internal/events"
)

// DefaultName is the wakelock name registered with the kernel.
const DefaultName = "bln_wake_lock"

// Backend is an OS sleep-prevention mechanism.
type Backend interface {
	Lock() error
	Unlock() error
	Name() string
}

// Manager wraps a Backend with idempotent acquire/release.
type Manager struct {
	mu      sync.Mutex
	backend Backend
	held    bool
	bus     *events.Bus
	logger  *slog.Logger
}

// NewManager creates a manager for backend.
func NewManager(backend Backend, bus *events.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Initializing wakelock", "backend", backend.Name())
	return &Manager{
		backend: backend,
		bus:     bus,
		logger:  logger,
	}
}

// Acquire takes the lock unless it is already held.
func (m *Manager) Acquire() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held {
		return
	}
	m.logger.Info("Acquiring wakelock", "backend", m.backend.Name())
	if err := m.backend.Lock(); err != nil {
		m.logger.Warn("Failed to acquire wakelock", "backend", m.backend.Name(), "error", err)
		return
	}
	m.held = true
	m.publish(true)
}

// Release drops the lock if it is held.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.held {
		return
	}
	m.logger.Info("Releasing wakelock", "backend", m.backend.Name())
	if err := m.backend.Unlock(); err != nil {
		m.logger.Warn("Failed to release wakelock", "backend", m.backend.Name(), "error", err)
	}
	m.held = false
	m.publish(false)
}

// Held reports whether the lock is currently held.
func (m *Manager) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Backend returns the name of the backend in use.
func (m *Manager) Backend() string {
	return m.backend.Name()
}

// Close releases the lock and any backend resources.
func (m *Manager) Close() error {
	m.Release()
	m.logger.Info("Destroying wakelock", "backend", m.backend.Name())
	if c, ok := m.backend.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (m *Manager) publish(held bool) {
	m.bus.Publish(events.WakelockChangedEvent{
		Held:      held,
		Backend:   m.backend.Name(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
