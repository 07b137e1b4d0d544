package feed

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"strings"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"token-pulse/internal/domain"
)

var tokenNames = []string{
	"Unreal", "Fixable", "FINAGENT", "SEEKEN", "MOLD", "AYAMI", "PumpDog", "MoonCat",
	"SolBear", "CryptoFrog", "DeFiDragon", "TokenTiger", "ChainCheetah", "BlockBull",
	"WhaleFin", "ApeCoin", "RocketRat", "StarShiba", "MetaMouse", "CosmicCow",
	"NeonNinja", "PixelPanda", "QuantumQuail", "VaporViper", "ZenZebra", "TurboTurtle",
	"LaserLlama", "GigaGoat", "HyperHawk", "MegaMonkey", "UltraUnicorn", "SuperSnake",
}

// kind is the lifecycle bucket a generated token starts in.
type kind string

const (
	kindNew      kind = "new"
	kindFinal    kind = "final"
	kindMigrated kind = "migrated"
)

// Generator produces plausible token records for the simulated feed.
type Generator struct {
	rng *mrand.Rand
}

// NewGenerator creates a generator. A zero seed derives one from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: mrand.New(mrand.NewSource(seed))}
}

// GenerateAddress returns a base58-encoded ed25519 public key derived
// from a random scalar, so generated addresses pass on-curve validation.
func GenerateAddress() string {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("read random seed: %v", err))
	}

	scalar, err := new(edwards25519.Scalar).SetBytesWithClamping(seed)
	if err != nil {
		panic(fmt.Sprintf("derive scalar: %v", err))
	}

	point := new(edwards25519.Point).ScalarBaseMult(scalar)
	return base58.Encode(point.Bytes())
}

// IsValidAddress checks that an address decodes to a point on the
// ed25519 curve.
func IsValidAddress(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

// Token generates a random token in the given lifecycle bucket.
func (g *Generator) Token(index int, k kind) domain.Token {
	nameIndex := (index + g.rng.Intn(len(tokenNames))) % len(tokenNames)
	name := tokenNames[nameIndex]
	symbol := strings.ToUpper(name[:4])

	var bondingProgress float64
	switch k {
	case kindMigrated:
		bondingProgress = 100
	case kindFinal:
		bondingProgress = 80 + g.rng.Float64()*19
	default:
		bondingProgress = g.rng.Float64() * 79
	}

	var baseMarketCap float64
	switch k {
	case kindMigrated:
		baseMarketCap = 50000 + g.rng.Float64()*500000
	case kindFinal:
		baseMarketCap = 30000 + g.rng.Float64()*100000
	default:
		baseMarketCap = 5000 + g.rng.Float64()*50000
	}

	ageHours := map[kind]float64{kindNew: 1, kindFinal: 12, kindMigrated: 48}[k]
	createdAt := time.Now().UnixMilli() - int64(g.rng.Float64()*ageHours*3600_000)

	t := domain.Token{
		ID:        fmt.Sprintf("token-%s-%d", k, index),
		Address:   GenerateAddress(),
		Name:      name,
		Symbol:    symbol,
		Avatar:    fmt.Sprintf("https://api.dicebear.com/7.x/shapes/svg?seed=%s%d", name, index),
		CreatedAt: createdAt,

		MarketCap: baseMarketCap,
		Volume:    baseMarketCap * (0.1 + g.rng.Float64()*0.5),
		TxCount:   10 + g.rng.Intn(500),
		Holders:   5 + g.rng.Intn(300),
		Liquidity: baseMarketCap * (0.3 + g.rng.Float64()*0.4),

		Price:          0.00001 + g.rng.Float64()*0.001,
		PriceChange24h: -50 + g.rng.Float64()*150,
		PriceChange1h:  -20 + g.rng.Float64()*60,
		PriceChange5m:  -10 + g.rng.Float64()*30,

		BondingProgress: bondingProgress,

		TopHolderPercent: g.rng.Float64() * 50,
		DevHolderPercent: g.rng.Float64() * 10,
		SniperPercent:    g.rng.Float64() * 30,
		InsiderPercent:   g.rng.Float64() * 15,

		IsVerified:    g.rng.Float64() > 0.7,
		IsMigrated:    k == kindMigrated,
		HasBundledBuy: g.rng.Float64() > 0.8,

		QuickBuyAmount: 2.0,
	}

	lower := strings.ToLower(symbol)
	if g.rng.Float64() > 0.3 {
		t.Twitter = "@" + lower
	}
	if g.rng.Float64() > 0.5 {
		t.Website = "https://" + lower + ".io"
	}
	if g.rng.Float64() > 0.4 {
		t.Telegram = "t.me/" + lower
	}

	return t
}

// Listing generates the initial snapshot: 15 tokens per category.
func (g *Generator) Listing() []domain.Token {
	tokens := make([]domain.Token, 0, 45)
	for i := 0; i < 15; i++ {
		tokens = append(tokens, g.Token(i, kindNew))
		tokens = append(tokens, g.Token(i+15, kindFinal))
		tokens = append(tokens, g.Token(i+30, kindMigrated))
	}
	return tokens
}

// PriceUpdate generates a random tick for the given token id.
func (g *Generator) PriceUpdate(tokenID string) domain.PriceUpdate {
	return domain.PriceUpdate{
		TokenID:       tokenID,
		Price:         0.00001 + g.rng.Float64()*0.001,
		MarketCap:     10000 + g.rng.Float64()*100000,
		Volume:        1000 + g.rng.Float64()*50000,
		PriceChange5m: -10 + g.rng.Float64()*30,
		Timestamp:     time.Now().UnixMilli(),
	}
}
