// Package session wires the bootstrap client, the event feed, the
// reconciliation store and the flash manager into one lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"token-pulse/internal/domain"
	"token-pulse/internal/feed"
	"token-pulse/internal/flash"
	"token-pulse/internal/observability"
	"token-pulse/internal/store"
)

// ErrNotLoaded is returned by Refresh before a successful first Load.
var ErrNotLoaded = errors.New("session not loaded")

// Session owns the dashboard data lifecycle: initial fetch, feed
// subscription, user-triggered refresh and teardown. All feed events
// funnel into store transitions through the handlers registered here.
type Session struct {
	client feed.Client
	feed   feed.Feed
	store  *store.Store
	flash  *flash.Manager
	logger *log.Logger

	// loaded flips once the first Load succeeds. Refresh handlers can
	// race Load and Close, so it is atomic.
	loaded atomic.Bool
}

// Options contains configuration for creating a Session.
type Options struct {
	Client feed.Client
	Feed   feed.Feed
	Store  *store.Store
	Flash  *flash.Manager
	Logger *log.Logger
}

// New creates a session. Client, Feed and Store are required; a nil
// Flash manager disables flash expiry, a nil Logger falls back to the
// default logger.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		client: opts.Client,
		feed:   opts.Feed,
		store:  opts.Store,
		flash:  opts.Flash,
		logger: logger,
	}
}

// Load performs the initial fetch, loads the snapshot into the store
// and connects the feed for the fetched id set. A fetch failure is
// surfaced through the store's loading state and returned; the session
// can be loaded again.
func (s *Session) Load(ctx context.Context) error {
	tokens, err := s.client.FetchTokens(ctx)
	if err != nil {
		observability.RecordFetchError()
		s.setLoadError(err)
		return fmt.Errorf("fetch tokens: %w", err)
	}

	s.store.LoadSnapshot(tokens)
	if s.flash != nil {
		s.flash.Reset()
	}

	s.registerHandlers()
	s.feed.Connect(s.store.TokenIDs())
	s.loaded.Store(true)

	s.logger.Printf("Loaded %d tokens, feed connected", len(tokens))
	return nil
}

// Refresh re-fetches the full listing. It flags IsRefreshing for its
// duration, never IsLoading. On success the snapshot replaces the
// store state and the feed is reconnected for the new id set; on
// failure the existing tokens stay and the error message lands in the
// loading state.
func (s *Session) Refresh(ctx context.Context) error {
	if !s.loaded.Load() {
		return ErrNotLoaded
	}

	s.setRefreshing(true)
	defer s.setRefreshing(false)

	tokens, err := s.client.FetchTokens(ctx)
	if err != nil {
		observability.RecordFetchError()
		msg := err.Error()
		s.store.SetLoading(domain.LoadingPatch{Error: &msg})
		return fmt.Errorf("refresh tokens: %w", err)
	}

	s.store.LoadSnapshot(tokens)
	if s.flash != nil {
		s.flash.Reset()
	}
	s.feed.Connect(s.store.TokenIDs())

	s.logger.Printf("Refreshed, %d tokens", len(tokens))
	return nil
}

// SelectToken marks a token as selected and fetches its detail record,
// upserting it into the store. An unknown id clears the selection and
// returns the client's error.
func (s *Session) SelectToken(ctx context.Context, tokenID string) (domain.Token, error) {
	if tokenID == "" {
		s.store.SetSelectedToken("")
		return domain.Token{}, nil
	}

	token, err := s.client.FetchTokenDetails(ctx, tokenID)
	if err != nil {
		s.store.SetSelectedToken("")
		return domain.Token{}, fmt.Errorf("fetch token details: %w", err)
	}

	s.store.AddToken(*token)
	s.store.SetSelectedToken(tokenID)
	return *token, nil
}

// Close disconnects the feed and cancels all flash timers.
func (s *Session) Close() {
	s.feed.Disconnect()
	if s.flash != nil {
		s.flash.Stop()
	}
	s.loaded.Store(false)
}

// registerHandlers installs the feed-to-store event plumbing.
func (s *Session) registerHandlers() {
	s.feed.SetConnectionHandler(func(connected bool) {
		s.store.SetConnected(connected)
	})

	s.feed.SetPriceUpdateHandler(func(updates []domain.PriceUpdate) {
		applied := s.store.ApplyPriceUpdates(updates)
		if s.flash == nil {
			return
		}
		for _, id := range applied {
			s.flash.Touch(id)
		}
	})

	s.feed.SetNewTokenHandler(func(token domain.Token) {
		s.store.AddToken(token)
	})

	s.feed.SetMigrationHandler(func(tokenID string) {
		s.store.Migrate(tokenID)
	})
}

func (s *Session) setLoadError(err error) {
	loading := false
	msg := err.Error()
	s.store.SetLoading(domain.LoadingPatch{IsLoading: &loading, Error: &msg})
}

func (s *Session) setRefreshing(v bool) {
	s.store.SetLoading(domain.LoadingPatch{IsRefreshing: &v})
}
