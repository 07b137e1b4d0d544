package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-pulse/internal/domain"
)

func fastSimConfig() SimConfig {
	return SimConfig{
		PriceInterval:     5 * time.Millisecond,
		NewTokenInterval:  time.Hour,
		MigrationInterval: time.Hour,
		Seed:              1,
	}
}

func TestSimFeed_DeliversPriceBatches(t *testing.T) {
	f := NewSimFeed(fastSimConfig(), nil)

	var mu sync.Mutex
	var batches [][]domain.PriceUpdate
	f.SetPriceUpdateHandler(func(updates []domain.PriceUpdate) {
		mu.Lock()
		batches = append(batches, updates)
		mu.Unlock()
	})

	var connected bool
	f.SetConnectionHandler(func(c bool) { connected = c })

	f.Connect([]string{"a", "b", "c", "d", "e", "f", "g", "h"})
	defer f.Disconnect()

	assert.True(t, connected)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) >= 3
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	known := map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true, "f": true, "g": true, "h": true}
	for _, batch := range batches {
		require.NotEmpty(t, batch)
		assert.LessOrEqual(t, len(batch), 8)
		for _, u := range batch {
			assert.True(t, known[u.TokenID], "tick for unknown id %s", u.TokenID)
		}
	}
}

func TestSimFeed_DisconnectStopsDelivery(t *testing.T) {
	f := NewSimFeed(fastSimConfig(), nil)

	var mu sync.Mutex
	count := 0
	f.SetPriceUpdateHandler(func([]domain.PriceUpdate) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	f.Connect([]string{"a", "b", "c"})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count > 0
	}, time.Second, time.Millisecond)

	f.Disconnect()
	assert.False(t, f.Connected())

	mu.Lock()
	after := count
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	final := count
	mu.Unlock()
	assert.Equal(t, after, final, "no delivery after disconnect")

	// Disconnecting again is safe.
	f.Disconnect()
}

func TestSimFeed_ReconnectReplacesIDSet(t *testing.T) {
	config := fastSimConfig()
	config.PriceInterval = 50 * time.Millisecond
	f := NewSimFeed(config, nil)

	var mu sync.Mutex
	seen := make(map[string]bool)
	f.SetPriceUpdateHandler(func(updates []domain.PriceUpdate) {
		mu.Lock()
		for _, u := range updates {
			seen[u.TokenID] = true
		}
		mu.Unlock()
	})

	f.Connect([]string{"old-1", "old-2", "old-3"})
	f.Connect([]string{"new-1", "new-2", "new-3"})
	defer f.Disconnect()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["new-1"] || seen["new-2"] || seen["new-3"]
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, seen["old-1"] || seen["old-2"] || seen["old-3"],
		"old id set must not receive delivery after reconnect")
}

func TestSimFeed_ConcurrentConnectsSurviveAndSettle(t *testing.T) {
	f := NewSimFeed(fastSimConfig(), nil)

	var mu sync.Mutex
	seen := make(map[string]bool)
	f.SetPriceUpdateHandler(func(updates []domain.PriceUpdate) {
		mu.Lock()
		for _, u := range updates {
			seen[u.TokenID] = true
		}
		mu.Unlock()
	})

	// Hammer the lifecycle from several goroutines, mimicking
	// concurrent refresh requests driving reconnects.
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				f.Connect([]string{"stale-1", "stale-2"})
			}
		}()
	}
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				f.Disconnect()
			}
		}()
	}
	wg.Wait()

	// One more reconnect settles on a final id set; only that set may
	// receive delivery from here on.
	f.Connect([]string{"live-1", "live-2"})
	defer f.Disconnect()
	require.True(t, f.Connected())

	mu.Lock()
	seen = make(map[string]bool)
	mu.Unlock()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["live-1"] || seen["live-2"]
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, seen["stale-1"] || seen["stale-2"],
		"torn-down loops must not deliver after reconnect")
}

func TestSimFeed_HandlerPanicDoesNotKillLoop(t *testing.T) {
	f := NewSimFeed(fastSimConfig(), nil)

	var mu sync.Mutex
	count := 0
	f.SetPriceUpdateHandler(func([]domain.PriceUpdate) {
		mu.Lock()
		count++
		n := count
		mu.Unlock()
		if n == 1 {
			panic("handler bug")
		}
	})

	f.Connect([]string{"a", "b", "c"})
	defer f.Disconnect()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 3
	}, time.Second, time.Millisecond, "loop should survive a panicking handler")
}

func TestSimFeed_NewTokenGrowsIDSet(t *testing.T) {
	config := fastSimConfig()
	config.NewTokenInterval = 2 * time.Millisecond
	f := NewSimFeed(config, nil)

	var mu sync.Mutex
	var announced []string
	f.SetNewTokenHandler(func(token domain.Token) {
		mu.Lock()
		announced = append(announced, token.ID)
		mu.Unlock()
	})

	var ticked map[string]bool
	f.SetPriceUpdateHandler(func(updates []domain.PriceUpdate) {
		mu.Lock()
		if ticked == nil {
			ticked = make(map[string]bool)
		}
		for _, u := range updates {
			ticked[u.TokenID] = true
		}
		mu.Unlock()
	})

	f.Connect([]string{"a"})
	defer f.Disconnect()

	// Announcements are probabilistic; wait until at least one lands
	// and then shows up in a price batch.
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, id := range announced {
			if ticked[id] {
				return true
			}
		}
		return false
	}, 5*time.Second, time.Millisecond)
}

func TestSimClient_FetchTokens(t *testing.T) {
	c := NewSimClient(SimClientConfig{Latency: time.Millisecond, Seed: 3})

	tokens, err := c.FetchTokens(context.Background())
	require.NoError(t, err)
	assert.Len(t, tokens, 45)
}

func TestSimClient_InjectedFailure(t *testing.T) {
	c := NewSimClient(SimClientConfig{Latency: time.Millisecond, FailRate: 1, Seed: 3})

	_, err := c.FetchTokens(context.Background())
	require.Error(t, err)
}

func TestSimClient_FetchTokenDetails(t *testing.T) {
	c := NewSimClient(SimClientConfig{Latency: time.Millisecond, Seed: 3})

	tok, err := c.FetchTokenDetails(context.Background(), "token-final-7")
	require.NoError(t, err)
	assert.Equal(t, "token-final-7", tok.ID)
	assert.GreaterOrEqual(t, tok.BondingProgress, 80.0)

	_, err = c.FetchTokenDetails(context.Background(), "nonsense")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSimClient_HonorsCancellation(t *testing.T) {
	c := NewSimClient(SimClientConfig{Latency: time.Minute, Seed: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchTokens(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
