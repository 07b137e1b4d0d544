// Package store holds the canonical in-memory token state and exposes
// the transitions that mutate it. Every transition is atomic: readers
// never observe a partially applied event.
package store

import (
	"sync"

	"token-pulse/internal/domain"
	"token-pulse/internal/observability"
)

// Store is the single source of truth for the dashboard.
//
// Tokens live in a map keyed by id; membership in the three lifecycle
// categories is kept in explicit id lists so category reads are O(1)
// and insertion order (newest first) is preserved independently of the
// query-time sort. The lists partition the key set of the token map at
// all times.
type Store struct {
	mu sync.RWMutex

	tokens       map[string]*domain.Token
	newPairs     []string
	finalStretch []string
	migrated     []string

	activeCategory  domain.Category
	sort            domain.SortConfig
	filter          domain.FilterConfig
	selectedTokenID string
	loading         domain.LoadingState
	flash           map[string]domain.FlashDirection
	connected       bool
}

// New creates an empty store. The first load is pending, so IsLoading
// starts true.
func New() *Store {
	return &Store{
		tokens:         make(map[string]*domain.Token),
		activeCategory: domain.CategoryNewPairs,
		sort:           domain.DefaultSort(),
		loading:        domain.LoadingState{IsLoading: true},
		flash:          make(map[string]domain.FlashDirection),
	}
}

// LoadSnapshot replaces the entire token map and rebuilds all category
// lists from scratch, deriving each token's category. Flash state and
// any prior fetch error are cleared and the first-load flag drops.
func (s *Store) LoadSnapshot(tokens []domain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = make(map[string]*domain.Token, len(tokens))
	s.newPairs = nil
	s.finalStretch = nil
	s.migrated = nil
	s.flash = make(map[string]domain.FlashDirection)

	for i := range tokens {
		t := tokens[i]
		if t.ID == "" {
			continue
		}
		if _, exists := s.tokens[t.ID]; exists {
			// Duplicate id within the snapshot: last record wins,
			// including its category derivation.
			s.removeFromListsLocked(t.ID)
		}
		s.tokens[t.ID] = &t

		switch domain.CategoryOf(&t) {
		case domain.CategoryMigrated:
			s.migrated = append(s.migrated, t.ID)
		case domain.CategoryFinalStretch:
			s.finalStretch = append(s.finalStretch, t.ID)
		default:
			s.newPairs = append(s.newPairs, t.ID)
		}
	}

	s.loading.IsLoading = false
	s.loading.Error = ""

	observability.RecordSnapshotLoaded()
	s.updateTrackedLocked()
}

// AddToken inserts a token and prepends its id to the derived category
// list. Inserting an id that already exists overwrites the record: if
// the new record derives the same category the id keeps its list
// position, otherwise it moves to the front of the derived list. Either
// way list membership always matches the stored record's derivation.
func (s *Store) AddToken(token domain.Token) {
	if token.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.tokens[token.ID]
	s.tokens[token.ID] = &token

	if exists {
		if domain.CategoryOf(prev) == domain.CategoryOf(&token) {
			return
		}
		s.removeFromListsLocked(token.ID)
	}

	switch domain.CategoryOf(&token) {
	case domain.CategoryMigrated:
		s.migrated = prepend(s.migrated, token.ID)
	case domain.CategoryFinalStretch:
		s.finalStretch = prepend(s.finalStretch, token.ID)
	default:
		s.newPairs = prepend(s.newPairs, token.ID)
	}

	if !exists {
		observability.RecordTokenAdded()
	}
	s.updateTrackedLocked()
}

// ApplyPriceUpdates applies a batch of price ticks as one atomic
// transition. Updates for unknown ids are dropped. A strict price
// increase or decrease sets the token's flash direction; an equal price
// leaves it as is. Category membership is never touched here, only
// Migrate moves tokens between lists.
//
// The returned slice holds the ids whose records were updated, in batch
// order, so the caller can arm flash-clear timers for exactly those.
func (s *Store) ApplyPriceUpdates(updates []domain.PriceUpdate) []string {
	if len(updates) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied := make([]string, 0, len(updates))
	for _, u := range updates {
		t, ok := s.tokens[u.TokenID]
		if !ok {
			continue
		}

		if u.Price > t.Price {
			s.flash[u.TokenID] = domain.FlashUp
		} else if u.Price < t.Price {
			s.flash[u.TokenID] = domain.FlashDown
		}

		t.Price = u.Price
		t.MarketCap = u.MarketCap
		t.Volume = u.Volume
		t.PriceChange5m = u.PriceChange5m

		applied = append(applied, u.TokenID)
	}

	observability.RecordPriceBatch(len(applied), len(updates)-len(applied))
	return applied
}

// ClearFlash resets the flash direction for a token. Unknown ids are a no-op.
func (s *Store) ClearFlash(tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flash, tokenID)
}

// Migrate marks a token as migrated, forces its bonding progress to 100
// and moves its id to the front of the migrated list. Unknown ids and
// already-migrated tokens are a no-op, so duplicate migration events
// cannot create duplicate list entries.
func (s *Store) Migrate(tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenID]
	if !ok {
		return
	}
	if t.IsMigrated {
		t.BondingProgress = 100
		return
	}

	t.IsMigrated = true
	t.BondingProgress = 100

	s.removeFromListsLocked(tokenID)
	s.migrated = prepend(s.migrated, tokenID)

	observability.RecordMigration()
	s.updateTrackedLocked()
}

// SetActiveCategory switches the category whose list queries return.
// Invalid values are ignored.
func (s *Store) SetActiveCategory(c domain.Category) {
	if !c.IsValid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCategory = c
}

// SetSort replaces the global sort configuration.
func (s *Store) SetSort(sort domain.SortConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = sort
}

// SetFilter replaces the filter configuration.
func (s *Store) SetFilter(filter domain.FilterConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
}

// SetSelectedToken records the token shown in the detail view.
// An empty id clears the selection.
func (s *Store) SetSelectedToken(tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTokenID = tokenID
}

// SetLoading merges a partial loading update into the current state.
func (s *Store) SetLoading(patch domain.LoadingPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.IsLoading != nil {
		s.loading.IsLoading = *patch.IsLoading
	}
	if patch.IsRefreshing != nil {
		s.loading.IsRefreshing = *patch.IsRefreshing
	}
	if patch.Error != nil {
		s.loading.Error = *patch.Error
	}
}

// SetConnected records the feed connection status.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	observability.UpdateFeedConnected(connected)
}

// TokenByID returns a copy of the token record, if known.
func (s *Store) TokenByID(tokenID string) (domain.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[tokenID]
	if !ok {
		return domain.Token{}, false
	}
	return *t, true
}

// Flash returns the current flash direction for a token.
func (s *Store) Flash(tokenID string) domain.FlashDirection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flash[tokenID]
}

// FlashAll returns a copy of every lit flash direction keyed by token
// id, for rendering a whole list in one pass.
func (s *Store) FlashAll() map[string]domain.FlashDirection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.FlashDirection, len(s.flash))
	for id, dir := range s.flash {
		out[id] = dir
	}
	return out
}

// TokenIDs returns all known token ids in no particular order.
func (s *Store) TokenIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tokens))
	for id := range s.tokens {
		ids = append(ids, id)
	}
	return ids
}

// CategoryIDs returns a copy of the index list for a category,
// newest first.
func (s *Store) CategoryIDs(c domain.Category) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch c {
	case domain.CategoryNewPairs:
		return append([]string(nil), s.newPairs...)
	case domain.CategoryFinalStretch:
		return append([]string(nil), s.finalStretch...)
	case domain.CategoryMigrated:
		return append([]string(nil), s.migrated...)
	default:
		return nil
	}
}

// ActiveCategory returns the category currently shown.
func (s *Store) ActiveCategory() domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCategory
}

// Sort returns the current sort configuration.
func (s *Store) Sort() domain.SortConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// Filter returns the current filter configuration.
func (s *Store) Filter() domain.FilterConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SelectedToken returns the id shown in the detail view, empty if none.
func (s *Store) SelectedToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTokenID
}

// Loading returns the current loading state.
func (s *Store) Loading() domain.LoadingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Connected reports the feed connection status.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Counts returns the number of tokens per category.
func (s *Store) Counts() (newPairs, finalStretch, migrated int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.newPairs), len(s.finalStretch), len(s.migrated)
}

// removeFromListsLocked drops an id from every category list.
// Callers must hold s.mu.
func (s *Store) removeFromListsLocked(id string) {
	s.newPairs = remove(s.newPairs, id)
	s.finalStretch = remove(s.finalStretch, id)
	s.migrated = remove(s.migrated, id)
}

// updateTrackedLocked pushes the category sizes to the metrics gauges.
// Callers must hold s.mu.
func (s *Store) updateTrackedLocked() {
	observability.UpdateTokensTracked(len(s.newPairs), len(s.finalStretch), len(s.migrated))
}

func prepend(ids []string, id string) []string {
	return append([]string{id}, ids...)
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
