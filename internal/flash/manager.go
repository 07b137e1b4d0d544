// Package flash schedules the timers that clear transient price-flash
// flags a fixed time after the last price move for a token.
package flash

import (
	"sync"
	"time"

	"token-pulse/internal/observability"
)

// DefaultTTL is how long a flash flag stays set after the last update.
const DefaultTTL = 600 * time.Millisecond

// Manager keeps one cancellable timer per token id. A new update for a
// token resets its timer (debounce per token). Timers carry the
// generation they were armed in; Reset and Stop bump the generation so
// callbacks from a previous feed connection can never fire against
// fresh state.
type Manager struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	gen     uint64
	stopped bool

	ttl   time.Duration
	clear func(tokenID string)
}

// NewManager creates a manager that invokes clear when a token's flash
// expires. A zero ttl falls back to DefaultTTL.
func NewManager(ttl time.Duration, clear func(tokenID string)) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		timers: make(map[string]*time.Timer),
		ttl:    ttl,
		clear:  clear,
	}
}

// Touch arms (or re-arms) the clear timer for a token.
func (m *Manager) Touch(tokenID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	if t, ok := m.timers[tokenID]; ok {
		t.Stop()
	}

	gen := m.gen
	m.timers[tokenID] = time.AfterFunc(m.ttl, func() {
		m.expire(tokenID, gen)
	})
	observability.UpdateFlashTimers(len(m.timers))
}

// expire runs on the timer goroutine. The generation check drops
// callbacks armed before a Reset or Stop.
func (m *Manager) expire(tokenID string, gen uint64) {
	m.mu.Lock()
	if m.stopped || gen != m.gen {
		m.mu.Unlock()
		return
	}
	delete(m.timers, tokenID)
	observability.UpdateFlashTimers(len(m.timers))
	m.mu.Unlock()

	m.clear(tokenID)
}

// Reset cancels all outstanding timers and invalidates in-flight
// callbacks. Called when the store is reloaded or the feed reconnects.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	observability.UpdateFlashTimers(0)
}

// Stop cancels everything and rejects further Touch calls.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	m.gen++
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	observability.UpdateFlashTimers(0)
}

// Active returns the number of outstanding timers.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
