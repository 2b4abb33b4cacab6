// Package coin defines the market-side domain entities for the simulation.
// This package is PURE and must NOT import any infrastructure packages (network, engine, platform).
package coin

import "time"

const (
	// PriceFloor is the minimum quoted price for any non-stable coin.
	// It guards the division-by-price math in mining and trading.
	PriceFloor = 0.01

	// HistoryCap bounds the rolling price history kept per coin.
	HistoryCap = 100

	// StableSymbol marks the coin pinned near 1.0 and exempt from
	// regime draws.
	StableSymbol = "USDT"
)

// PricePoint is one (timestamp, price) sample in a coin's history.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Coin represents one tradable asset in the catalog.
type Coin struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Symbol  string       `json:"symbol"`
	Price   float64      `json:"price"`
	History []PricePoint `json:"history"`
}

// IsStable reports whether this is the stablecoin.
func (c *Coin) IsStable() bool {
	return c.Symbol == StableSymbol
}

// SetPrice updates the quoted price and appends a history sample dated at
// the given in-game date. Non-stable prices are clamped up to PriceFloor;
// the history is truncated to the most recent HistoryCap samples.
func (c *Coin) SetPrice(price float64, date time.Time) {
	if !c.IsStable() && price < PriceFloor {
		price = PriceFloor
	}
	c.Price = price
	c.History = append(c.History, PricePoint{Date: date, Price: price})
	if len(c.History) > HistoryCap {
		c.History = c.History[len(c.History)-HistoryCap:]
	}
}

// RecentHistory returns up to the last n samples, newest last. The slice
// aliases the coin's history and must not be mutated by callers.
func (c *Coin) RecentHistory(n int) []PricePoint {
	if len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}

// Clone returns an independent copy of the coin, history included.
func (c *Coin) Clone() *Coin {
	dup := *c
	dup.History = append([]PricePoint(nil), c.History...)
	return &dup
}

type catalogEntry struct {
	id     string
	name   string
	symbol string
	price  float64
}

// The launch catalog. Coins are created once per game session and never
// destroyed within it.
var catalog = []catalogEntry{
	{"btc", "Bitcoin", "BTC", 60000},
	{"eth", "Ethereum", "ETH", 3000},
	{"usdt", "Tether", "USDT", 1},
	{"bnb", "Binance Coin", "BNB", 580},
	{"ada", "Cardano", "ADA", 0.45},
	{"xrp", "XRP", "XRP", 0.52},
	{"doge", "Dogecoin", "DOGE", 0.15},
	{"dot", "Polkadot", "DOT", 7.5},
	{"ltc", "Litecoin", "LTC", 85},
	{"sol", "Solana", "SOL", 150},
	{"matic", "Polygon", "MATIC", 0.7},
	{"avax", "Avalanche", "AVAX", 35},
	{"link", "Chainlink", "LINK", 18},
	{"atom", "Cosmos", "ATOM", 11},
	{"uni", "Uniswap", "UNI", 10},
	{"xlm", "Stellar", "XLM", 0.11},
	{"vet", "VeChain", "VET", 0.035},
	{"theta", "Theta", "THETA", 2.5},
	{"fil", "Filecoin", "FIL", 6},
	{"algo", "Algorand", "ALGO", 0.18},
}

// DefaultCoinID is the coin selected when a new game starts.
const DefaultCoinID = "btc"

// Catalog builds a fresh copy of the launch catalog, each coin seeded with
// a single history sample dated now.
func Catalog(now time.Time) []*Coin {
	coins := make([]*Coin, 0, len(catalog))
	for _, e := range catalog {
		coins = append(coins, &Coin{
			ID:      e.id,
			Name:    e.name,
			Symbol:  e.symbol,
			Price:   e.price,
			History: []PricePoint{{Date: now, Price: e.price}},
		})
	}
	return coins
}
