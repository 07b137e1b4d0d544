package store

import (
	"sort"

	"token-pulse/internal/domain"
)

// VisibleTokens derives the list for the active category: index ids are
// resolved against the token map (ids without a record are dropped),
// filters are applied, then a stable sort by the configured field.
// The result is a fresh slice of copies; mutating it does not touch
// store state.
func (s *Store) VisibleTokens() []domain.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	switch s.activeCategory {
	case domain.CategoryNewPairs:
		ids = s.newPairs
	case domain.CategoryFinalStretch:
		ids = s.finalStretch
	case domain.CategoryMigrated:
		ids = s.migrated
	}

	list := make([]domain.Token, 0, len(ids))
	for _, id := range ids {
		t, ok := s.tokens[id]
		if !ok {
			continue
		}
		if !matchesFilter(t, s.filter) {
			continue
		}
		list = append(list, *t)
	}

	sortTokens(list, s.sort)
	return list
}

// matchesFilter applies all configured thresholds with logical AND.
// HideRugged is intentionally not applied, see domain.FilterConfig.
func matchesFilter(t *domain.Token, f domain.FilterConfig) bool {
	if f.MinMarketCap > 0 && t.MarketCap < f.MinMarketCap {
		return false
	}
	if f.MaxMarketCap > 0 && t.MarketCap > f.MaxMarketCap {
		return false
	}
	if f.MinHolders > 0 && t.Holders < f.MinHolders {
		return false
	}
	if f.MinVolume > 0 && t.Volume < f.MinVolume {
		return false
	}
	if f.HideInsiders && t.InsiderPercent >= domain.InsiderThreshold {
		return false
	}
	return true
}

// sortTokens stable-sorts the list by the configured numeric field.
// Unknown fields compare equal, leaving the incoming order untouched.
func sortTokens(list []domain.Token, cfg domain.SortConfig) {
	sort.SliceStable(list, func(i, j int) bool {
		a, aok := sortValue(&list[i], cfg.Field)
		b, bok := sortValue(&list[j], cfg.Field)
		if !aok || !bok {
			return false
		}
		if cfg.Direction == domain.SortAsc {
			return a < b
		}
		return a > b
	})
}

func sortValue(t *domain.Token, field domain.SortField) (float64, bool) {
	switch field {
	case domain.SortByCreatedAt:
		return float64(t.CreatedAt), true
	case domain.SortByMarketCap:
		return t.MarketCap, true
	case domain.SortByVolume:
		return t.Volume, true
	case domain.SortByHolders:
		return float64(t.Holders), true
	case domain.SortByPriceChange24h:
		return t.PriceChange24h, true
	case domain.SortByBondingProgress:
		return t.BondingProgress, true
	default:
		return 0, false
	}
}
