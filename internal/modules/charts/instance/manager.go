package instance

import (
	"sync"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/rs/zerolog"
)

// Manager tracks the live chart instances of the process. Instances never share
// state; the manager only indexes them by ID.
type Manager struct {
	runner Runner
	settle time.Duration
	log    zerolog.Logger

	mu     sync.RWMutex
	charts map[string]*Chart
}

// NewManager creates an empty manager.
func NewManager(runner Runner, settle time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		runner: runner,
		settle: settle,
		log:    log,
		charts: make(map[string]*Chart),
	}
}

// Create registers a new chart instance. The instance is not loaded yet.
func (m *Manager) Create(cfg domain.ChartConfig, opts Options) *Chart {
	if opts.Settle == 0 {
		opts.Settle = m.settle
	}
	c := New(m.runner, cfg, opts, m.log)

	m.mu.Lock()
	m.charts[c.ID()] = c
	m.mu.Unlock()
	return c
}

// Get returns an instance by ID.
func (m *Manager) Get(id string) (*Chart, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.charts[id]
	return c, ok
}

// Remove closes and forgets an instance.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	c, ok := m.charts[id]
	delete(m.charts, id)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Len returns the number of live instances.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.charts)
}
