package feed

import (
	"log"
	"strings"
	"sync"
	"time"

	"token-pulse/internal/domain"
)

// SimConfig configures the simulated feed's emission cadence.
type SimConfig struct {
	// PriceInterval is the delay between price update batches.
	PriceInterval time.Duration
	// NewTokenInterval is the delay between new-listing attempts.
	NewTokenInterval time.Duration
	// MigrationInterval is the delay between migration attempts.
	MigrationInterval time.Duration
	// Seed seeds the random generator; zero uses the clock.
	Seed int64
}

// DefaultSimConfig returns the default emission cadence.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		PriceInterval:     800 * time.Millisecond,
		NewTokenInterval:  7 * time.Second,
		MigrationInterval: 18 * time.Second,
	}
}

// SimFeed is a simulated event feed. It emits randomized price batches,
// new listings and migrations for the id set it was connected with,
// growing the set as it announces new tokens.
type SimFeed struct {
	config SimConfig
	gen    *Generator
	logger *log.Logger

	// lifecycle serializes Connect and Disconnect. It stays held across
	// the wait for the previous delivery loop to exit, so a concurrent
	// Connect can never start a new loop while another caller is still
	// tearing the old one down.
	lifecycle sync.Mutex

	mu              sync.Mutex
	onPriceUpdate   PriceUpdateHandler
	onConnection    ConnectionHandler
	onNewToken      NewTokenHandler
	onMigration     MigrationHandler
	tokenIDs        []string
	connected       bool
	done            chan struct{}
	wg              sync.WaitGroup
	newTokenCounter int
}

// NewSimFeed creates a simulated feed. A nil logger falls back to the
// default logger.
func NewSimFeed(config SimConfig, logger *log.Logger) *SimFeed {
	if config.PriceInterval <= 0 {
		config.PriceInterval = DefaultSimConfig().PriceInterval
	}
	if config.NewTokenInterval <= 0 {
		config.NewTokenInterval = DefaultSimConfig().NewTokenInterval
	}
	if config.MigrationInterval <= 0 {
		config.MigrationInterval = DefaultSimConfig().MigrationInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SimFeed{
		config:          config,
		gen:             NewGenerator(config.Seed),
		logger:          logger,
		newTokenCounter: 100,
	}
}

// Connect begins delivery for the given id set. An existing delivery
// loop is torn down first so reconnecting with a different set never
// duplicates emissions.
func (f *SimFeed) Connect(tokenIDs []string) {
	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()

	f.mu.Lock()
	if f.connected {
		f.teardownLocked()
	}

	f.tokenIDs = append([]string(nil), tokenIDs...)
	f.connected = true
	f.done = make(chan struct{})
	done := f.done
	handler := f.onConnection

	f.wg.Add(1)
	go f.run(done)
	f.mu.Unlock()

	if handler != nil {
		f.invoke(func() { handler(true) })
	}
}

// Disconnect stops delivery and cancels all scheduled emissions.
// Safe to call when not connected.
func (f *SimFeed) Disconnect() {
	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()

	f.mu.Lock()
	if !f.connected {
		f.mu.Unlock()
		return
	}
	f.teardownLocked()
	handler := f.onConnection
	f.mu.Unlock()

	if handler != nil {
		f.invoke(func() { handler(false) })
	}
}

// teardownLocked stops the delivery loop and waits for it to exit.
// Callers must hold f.lifecycle and f.mu; f.mu is released around the
// wait because the loop goroutine takes it for emissions, while
// f.lifecycle keeps other Connect/Disconnect callers out until the
// wait has returned.
func (f *SimFeed) teardownLocked() {
	close(f.done)
	f.connected = false

	f.mu.Unlock()
	f.wg.Wait()
	f.mu.Lock()
}

// run is the delivery loop. All emissions happen here, one at a time.
func (f *SimFeed) run(done chan struct{}) {
	defer f.wg.Done()

	priceTicker := time.NewTicker(f.config.PriceInterval)
	defer priceTicker.Stop()
	newTokenTicker := time.NewTicker(f.config.NewTokenInterval)
	defer newTokenTicker.Stop()
	migrationTicker := time.NewTicker(f.config.MigrationInterval)
	defer migrationTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-priceTicker.C:
			f.emitPriceBatch()
		case <-newTokenTicker.C:
			f.emitNewToken()
		case <-migrationTicker.C:
			f.emitMigration()
		}
	}
}

// emitPriceBatch sends one batch of 3-8 random ticks.
func (f *SimFeed) emitPriceBatch() {
	f.mu.Lock()
	handler := f.onPriceUpdate
	if handler == nil || len(f.tokenIDs) == 0 {
		f.mu.Unlock()
		return
	}

	count := 3 + f.gen.rng.Intn(5)
	if count > len(f.tokenIDs) {
		count = len(f.tokenIDs)
	}
	picked := f.gen.rng.Perm(len(f.tokenIDs))[:count]

	updates := make([]domain.PriceUpdate, 0, count)
	for _, i := range picked {
		updates = append(updates, f.gen.PriceUpdate(f.tokenIDs[i]))
	}
	f.mu.Unlock()

	f.invoke(func() { handler(updates) })
}

// emitNewToken announces a fresh listing with probability 0.4.
func (f *SimFeed) emitNewToken() {
	f.mu.Lock()
	handler := f.onNewToken
	if handler == nil || f.gen.rng.Float64() <= 0.6 {
		f.mu.Unlock()
		return
	}

	token := f.gen.Token(f.newTokenCounter, kindNew)
	f.newTokenCounter++
	f.tokenIDs = append(f.tokenIDs, token.ID)
	f.mu.Unlock()

	f.invoke(func() { handler(token) })
}

// emitMigration migrates a random near-threshold token with
// probability 0.3.
func (f *SimFeed) emitMigration() {
	f.mu.Lock()
	handler := f.onMigration
	if handler == nil || f.gen.rng.Float64() <= 0.7 {
		f.mu.Unlock()
		return
	}

	var candidates []string
	for _, id := range f.tokenIDs {
		if strings.Contains(id, "final") {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		f.mu.Unlock()
		return
	}
	tokenID := candidates[f.gen.rng.Intn(len(candidates))]
	f.mu.Unlock()

	f.invoke(func() { handler(tokenID) })
}

// invoke runs a handler, recovering from panics so a misbehaving
// handler cannot kill the delivery loop.
func (f *SimFeed) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Printf("feed handler panic: %v", r)
		}
	}()
	fn()
}

// SetConnectionHandler registers the connection status handler.
// The last registration wins.
func (f *SimFeed) SetConnectionHandler(h ConnectionHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onConnection = h
}

// SetPriceUpdateHandler registers the price batch handler.
func (f *SimFeed) SetPriceUpdateHandler(h PriceUpdateHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onPriceUpdate = h
}

// SetNewTokenHandler registers the new listing handler.
func (f *SimFeed) SetNewTokenHandler(h NewTokenHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onNewToken = h
}

// SetMigrationHandler registers the migration handler.
func (f *SimFeed) SetMigrationHandler(h MigrationHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMigration = h
}

// Connected reports whether the feed is delivering.
func (f *SimFeed) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// AddTokenID registers an extra id for price emissions.
func (f *SimFeed) AddTokenID(tokenID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.tokenIDs {
		if id == tokenID {
			return
		}
	}
	f.tokenIDs = append(f.tokenIDs, tokenID)
}

var _ Feed = (*SimFeed)(nil)
