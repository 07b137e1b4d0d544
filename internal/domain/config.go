package domain

// SortField identifies a numeric Token field the visible list can be sorted by.
type SortField string

const (
	SortByCreatedAt       SortField = "createdAt"
	SortByMarketCap       SortField = "marketCap"
	SortByVolume          SortField = "volume"
	SortByHolders         SortField = "holders"
	SortByPriceChange24h  SortField = "priceChange24h"
	SortByBondingProgress SortField = "bondingProgress"
)

// IsValid checks if the sort field is a valid value.
func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByMarketCap, SortByVolume, SortByHolders,
		SortByPriceChange24h, SortByBondingProgress:
		return true
	}
	return false
}

// SortDirection is the order of a sorted list.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig is the global sort applied to whichever category list is queried.
type SortConfig struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort returns the initial sort: newest first.
func DefaultSort() SortConfig {
	return SortConfig{Field: SortByCreatedAt, Direction: SortDesc}
}

// FilterConfig holds optional thresholds combined by logical AND.
// Zero-valued numeric fields are inactive.
type FilterConfig struct {
	MinMarketCap float64 `json:"minMarketCap,omitempty"`
	MaxMarketCap float64 `json:"maxMarketCap,omitempty"`
	MinHolders   int     `json:"minHolders,omitempty"`
	MinVolume    float64 `json:"minVolume,omitempty"`

	// HideRugged is accepted but not applied: no "rugged" predicate is
	// defined by product requirements.
	HideRugged   bool `json:"hideRugged,omitempty"`
	HideInsiders bool `json:"hideInsiders,omitempty"`
}

// InsiderThreshold is the insiderPercent at or above which the
// hideInsiders filter drops a token.
const InsiderThreshold = 10.0

// LoadingState tracks fetch progress and the last user-facing error.
// Error is empty when there is no error to show.
type LoadingState struct {
	IsLoading    bool   `json:"isLoading"`
	IsRefreshing bool   `json:"isRefreshing"`
	Error        string `json:"error,omitempty"`
}

// LoadingPatch carries a partial LoadingState update. Nil fields are
// left unchanged when the patch is applied.
type LoadingPatch struct {
	IsLoading    *bool
	IsRefreshing *bool
	Error        *string
}

// FlashDirection is the transient UI signal for the most recent price move.
type FlashDirection string

const (
	FlashNone FlashDirection = ""
	FlashUp   FlashDirection = "up"
	FlashDown FlashDirection = "down"
)
