package feed

import (
	"context"
	"errors"
	mrand "math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"token-pulse/internal/domain"
)

// SimClient simulates the bootstrap API with network latency and an
// occasional injected failure.
type SimClient struct {
	mu       sync.Mutex
	gen      *Generator
	rng      *mrand.Rand
	latency  time.Duration
	failRate float64
}

// SimClientConfig configures the simulated bootstrap client.
type SimClientConfig struct {
	// Latency is the simulated round-trip delay.
	Latency time.Duration
	// FailRate is the probability [0,1] that FetchTokens fails.
	FailRate float64
	// Seed seeds the random generator; zero uses the clock.
	Seed int64
}

// DefaultSimClientConfig returns the default latency and failure rate.
func DefaultSimClientConfig() SimClientConfig {
	return SimClientConfig{
		Latency:  200 * time.Millisecond,
		FailRate: 0.05,
	}
}

// NewSimClient creates a simulated bootstrap client.
func NewSimClient(config SimClientConfig) *SimClient {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimClient{
		gen:      NewGenerator(seed),
		rng:      mrand.New(mrand.NewSource(seed + 1)),
		latency:  config.Latency,
		failRate: config.FailRate,
	}
}

// FetchTokens returns a full generated listing after the simulated
// delay, or an injected failure.
func (c *SimClient) FetchTokens(ctx context.Context) ([]domain.Token, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rng.Float64() < c.failRate {
		return nil, errors.New("failed to fetch tokens, please try again")
	}
	return c.gen.Listing(), nil
}

// FetchTokenDetails regenerates a token for a known-looking id.
// Ids that do not match the generated scheme return ErrNotFound.
func (c *SimClient) FetchTokenDetails(ctx context.Context, tokenID string) (*domain.Token, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}

	parts := strings.Split(tokenID, "-")
	if len(parts) != 3 || parts[0] != "token" {
		return nil, ErrNotFound
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, ErrNotFound
	}

	k := kind(parts[1])
	switch k {
	case kindNew, kindFinal, kindMigrated:
	default:
		return nil, ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.gen.Token(index, k)
	token.ID = tokenID
	return &token, nil
}

// sleep waits out the simulated latency, honoring cancellation.
func (c *SimClient) sleep(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.latency):
		return nil
	}
}

var _ Client = (*SimClient)(nil)
