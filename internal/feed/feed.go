// Package feed defines the upstream event source contract and provides
// a simulated implementation. A production deployment substitutes a
// real push transport behind the same interface.
package feed

import (
	"context"
	"errors"

	"token-pulse/internal/domain"
)

// ErrNotFound is returned when a requested token does not exist upstream.
var ErrNotFound = errors.New("token not found")

// ConnectionHandler receives feed connection status changes.
type ConnectionHandler func(connected bool)

// PriceUpdateHandler receives batched price ticks. The batch is to be
// applied as a single unit.
type PriceUpdateHandler func(updates []domain.PriceUpdate)

// NewTokenHandler receives newly listed tokens.
type NewTokenHandler func(token domain.Token)

// MigrationHandler receives the id of a token that migrated.
type MigrationHandler func(tokenID string)

// Feed is the upstream event source. Each registration point holds at
// most one handler; registering again replaces the previous one.
// Handler errors or panics must not take down the feed's delivery loop.
type Feed interface {
	// Connect begins delivery for the given token id set. Connecting
	// while already connected tears down the previous delivery first,
	// so a different id set never produces duplicate delivery.
	Connect(tokenIDs []string)

	// Disconnect stops all delivery and cancels every scheduled
	// emission. Safe to call when not connected.
	Disconnect()

	SetConnectionHandler(h ConnectionHandler)
	SetPriceUpdateHandler(h PriceUpdateHandler)
	SetNewTokenHandler(h NewTokenHandler)
	SetMigrationHandler(h MigrationHandler)
}

// Client is the bootstrap request interface: one full listing fetch and
// one per-token detail fetch.
type Client interface {
	FetchTokens(ctx context.Context) ([]domain.Token, error)
	FetchTokenDetails(ctx context.Context, tokenID string) (*domain.Token, error)
}
