package readiness

import (
	"sync"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
)

// Manager remembers the last probe outcome so observers can read it without
// issuing another cluster health request.
type Manager struct {
	mu        sync.RWMutex
	result    domain.ReadinessResult
	checkedAt time.Time
	listener  func(domain.ReadinessResult)
}

func NewManager() *Manager {
	return &Manager{result: domain.ReadinessNotReady}
}

func (m *Manager) SetResult(result domain.ReadinessResult) {
	m.mu.Lock()
	old := m.result
	m.result = result
	m.checkedAt = time.Now()
	listener := m.listener
	m.mu.Unlock()

	if listener != nil && old != result {
		listener(result)
	}
}

// SetListener replaces the change listener; nil removes it. The listener runs
// on the probing goroutine.
func (m *Manager) SetListener(listener func(domain.ReadinessResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = listener
}

func (m *Manager) Result() domain.ReadinessResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result
}

// CheckedAt is the time of the last probe, zero before the first one.
func (m *Manager) CheckedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checkedAt
}

func (m *Manager) IsReady() bool {
	return m.Result().IsReady()
}
