package domain

// Token represents a tracked trading instrument on the dashboard.
// Market metrics are mutated in place by price update events; everything
// else is set at creation time.
type Token struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Avatar    string `json:"avatar"`
	CreatedAt int64  `json:"createdAt"` // Unix timestamp in milliseconds

	// Social links (optional, empty when absent)
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
	Telegram string `json:"telegram,omitempty"`

	// Market metrics
	MarketCap float64 `json:"marketCap"`
	Volume    float64 `json:"volume"`
	TxCount   int     `json:"txCount"`
	Holders   int     `json:"holders"`
	Liquidity float64 `json:"liquidity"`

	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"priceChange24h"`
	PriceChange1h  float64 `json:"priceChange1h"`
	PriceChange5m  float64 `json:"priceChange5m"`

	// BondingProgress is the percentage [0,100] of the pre-migration curve
	// completed. Reaching 100 coincides with migration.
	BondingProgress float64 `json:"bondingProgress"`

	// Holder distribution
	TopHolderPercent float64 `json:"topHolderPercent"`
	DevHolderPercent float64 `json:"devHolderPercent"`
	SniperPercent    float64 `json:"sniperPercent"`
	InsiderPercent   float64 `json:"insiderPercent"`

	IsVerified    bool `json:"isVerified"`
	IsMigrated    bool `json:"isMigrated"`
	HasBundledBuy bool `json:"hasBundledBuy"`

	QuickBuyAmount float64 `json:"quickBuyAmount"`
}

// PriceUpdate is an ephemeral price tick for a single token.
// It is applied to the matching token record and discarded.
type PriceUpdate struct {
	TokenID       string  `json:"tokenId"`
	Price         float64 `json:"price"`
	MarketCap     float64 `json:"marketCap"`
	Volume        float64 `json:"volume"`
	PriceChange5m float64 `json:"priceChange5m"`
	Timestamp     int64   `json:"timestamp"` // Unix timestamp in milliseconds
}
