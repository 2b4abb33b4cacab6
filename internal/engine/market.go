package engine

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"cryptotycoon/internal/game"
	"cryptotycoon/internal/platform/metrics"
)

const (
	// slippageChance is the probability that a trade settles at an
	// adverse execution price instead of the quote.
	slippageChance = 0.10

	// slippageRate is the adverse markup/markdown applied on a slip.
	slippageRate = 0.10
)

// MarketSystem validates and applies buy/sell orders against cash and
// holdings. Every operation is atomic: either the full transition applies
// or only the message field changes.
type MarketSystem struct {
	rng *rand.Rand
	log *zap.Logger
}

// NewMarketSystem creates the trading ledger with an injected random source.
func NewMarketSystem(rng *rand.Rand, log *zap.Logger) *MarketSystem {
	return &MarketSystem{rng: rng, log: log}
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}

// Buy purchases amount units of the selected coin. The reported result is
// whether the order filled; the state message always explains the outcome.
func (ms *MarketSystem) Buy(st *game.State, amount float64) bool {
	if !validAmount(amount) {
		st.Message = "Please enter a positive amount to buy."
		metrics.Get().RecordTrade(false)
		return false
	}
	c := st.SelectedCoin()
	if c == nil {
		st.Message = "No coin selected."
		metrics.Get().RecordTrade(false)
		return false
	}

	// One-shot slippage on the execution price only. The quote and the
	// history are untouched.
	execPrice := c.Price
	slipped := false
	if ms.rng.Float64() < slippageChance {
		execPrice *= 1 + slippageRate
		slipped = true
	}

	cost := amount * execPrice
	if !st.SandboxMode && st.Cash < cost {
		st.Message = "Not enough cash to make this purchase."
		metrics.Get().RecordTrade(false)
		return false
	}

	if !st.SandboxMode {
		st.Cash -= cost
	}
	st.Holdings[c.ID] += amount

	st.Message = fmt.Sprintf("Successfully bought %.4f %s.", amount, c.Symbol)
	if slipped {
		st.Message += " A costly mistake increased the price!"
	}
	ms.log.Info("buy filled",
		zap.String("coin", c.ID),
		zap.Float64("amount", amount),
		zap.Float64("exec_price", execPrice),
		zap.Bool("slipped", slipped))
	metrics.Get().RecordTrade(true)
	return true
}

// Sell liquidates amount units of the selected coin. Holdings are checked
// against the true balance regardless of sandbox mode; proceeds are
// credited even in sandbox to keep net-worth accounting consistent.
func (ms *MarketSystem) Sell(st *game.State, amount float64) bool {
	if !validAmount(amount) {
		st.Message = "Please enter a positive amount to sell."
		metrics.Get().RecordTrade(false)
		return false
	}
	c := st.SelectedCoin()
	if c == nil {
		st.Message = "No coin selected."
		metrics.Get().RecordTrade(false)
		return false
	}

	held := st.Holding(c.ID)
	if held < amount {
		st.Message = fmt.Sprintf("You only have %.4f %s to sell.", held, c.Symbol)
		metrics.Get().RecordTrade(false)
		return false
	}

	execPrice := c.Price
	slipped := false
	if ms.rng.Float64() < slippageChance {
		execPrice *= 1 - slippageRate
		slipped = true
	}
	proceeds := amount * execPrice

	st.Cash += proceeds
	st.Holdings[c.ID] = held - amount

	st.Message = fmt.Sprintf("Successfully sold %.4f %s.", amount, c.Symbol)
	if slipped {
		st.Message += " A costly mistake decreased the price!"
	}
	ms.log.Info("sell filled",
		zap.String("coin", c.ID),
		zap.Float64("amount", amount),
		zap.Float64("exec_price", execPrice),
		zap.Bool("slipped", slipped))
	metrics.Get().RecordTrade(true)
	return true
}

// SellAll liquidates the entire holding of the selected coin. A zero
// holding is a no-op with a message.
func (ms *MarketSystem) SellAll(st *game.State) bool {
	held := st.Holding(st.SelectedCoinID)
	if held <= 0 {
		st.Message = "You have no coins to sell."
		return false
	}
	return ms.Sell(st, held)
}
