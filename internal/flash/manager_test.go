package flash

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects cleared ids.
type recorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *recorder) clear(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *recorder) cleared() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestManager_ClearsAfterTTL(t *testing.T) {
	rec := &recorder{}
	m := NewManager(20*time.Millisecond, rec.clear)
	defer m.Stop()

	m.Touch("a")
	require.Equal(t, 1, m.Active())

	assert.Eventually(t, func() bool {
		got := rec.cleared()
		return len(got) == 1 && got[0] == "a"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, m.Active())
}

func TestManager_TouchDebouncesPerToken(t *testing.T) {
	rec := &recorder{}
	m := NewManager(50*time.Millisecond, rec.clear)
	defer m.Stop()

	m.Touch("a")
	time.Sleep(30 * time.Millisecond)
	m.Touch("a")
	time.Sleep(30 * time.Millisecond)

	// First timer would have fired by now; the re-arm must have
	// cancelled it.
	assert.Empty(t, rec.cleared())
	assert.Equal(t, 1, m.Active())

	assert.Eventually(t, func() bool {
		return len(rec.cleared()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestManager_IndependentTokens(t *testing.T) {
	rec := &recorder{}
	m := NewManager(20*time.Millisecond, rec.clear)
	defer m.Stop()

	m.Touch("a")
	m.Touch("b")
	require.Equal(t, 2, m.Active())

	assert.Eventually(t, func() bool {
		return len(rec.cleared()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestManager_ResetDropsPendingTimers(t *testing.T) {
	rec := &recorder{}
	m := NewManager(20*time.Millisecond, rec.clear)
	defer m.Stop()

	m.Touch("a")
	m.Reset()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.cleared(), "timers from the previous generation must not fire")
	assert.Equal(t, 0, m.Active())

	// Manager stays usable after Reset.
	m.Touch("b")
	assert.Eventually(t, func() bool {
		got := rec.cleared()
		return len(got) == 1 && got[0] == "b"
	}, time.Second, 5*time.Millisecond)
}

func TestManager_StopCancelsAndRejects(t *testing.T) {
	rec := &recorder{}
	m := NewManager(20*time.Millisecond, rec.clear)

	m.Touch("a")
	m.Stop()
	m.Touch("b")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.cleared())
	assert.Equal(t, 0, m.Active())
}
