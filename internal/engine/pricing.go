// Package engine contains the game loop and simulation logic.
// This is the heartbeat of the market simulation.
//
// ARCHITECTURAL RULE: systems never touch state outside the engine lock.
// The Engine calls into them while holding it; each call is one atomic
// transition.
package engine

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"cryptotycoon/internal/domain/coin"
)

// Regime table thresholds. One uniform draw per coin per tick selects the
// movement band; the tail bands fire conditionally.
const (
	microNoiseCeil = 0.40 // ±0.5%
	moderateCeil   = 0.70 // ±3%
	largeCeil      = 0.90 // ±10%
	crashCeil      = 0.95 // 50% crash, conditional
	// above crashCeil: 50% rally, conditional

	tailChance = 0.6 // conditional probability that a crash/rally fires

	stableBand = 0.005 // stablecoin redrawn within ±0.25% of 1.0
)

// PricingSystem advances coin quotes through the per-tick regime draw.
type PricingSystem struct {
	rng *rand.Rand
	log *zap.Logger
}

// NewPricingSystem creates the price model with an injected random source.
func NewPricingSystem(rng *rand.Rand, log *zap.Logger) *PricingSystem {
	return &PricingSystem{rng: rng, log: log}
}

// Advance applies one regime draw to a single coin and appends the new
// (date, price) sample. The stablecoin skips the table and is redrawn
// around 1.0 instead.
func (ps *PricingSystem) Advance(c *coin.Coin, date time.Time) {
	if c.IsStable() {
		c.SetPrice(1+(ps.rng.Float64()-0.5)*stableBand, date)
		return
	}

	price := c.Price
	switch draw := ps.rng.Float64(); {
	case draw < microNoiseCeil:
		price *= 1 + (ps.rng.Float64()-0.5)*0.01
	case draw < moderateCeil:
		price *= 1 + (ps.rng.Float64()-0.5)*0.06
	case draw < largeCeil:
		price *= 1 + (ps.rng.Float64()-0.5)*0.2
	case draw < crashCeil:
		if ps.rng.Float64() < tailChance {
			price *= 0.5
			ps.log.Info("price crash", zap.String("coin", c.ID), zap.Float64("price", price))
		}
	default:
		if ps.rng.Float64() < tailChance {
			price *= 1.5
			ps.log.Info("price rally", zap.String("coin", c.ID), zap.Float64("price", price))
		}
	}

	c.SetPrice(price, date)
}

// AdvanceAll runs the regime draw over the whole catalog.
func (ps *PricingSystem) AdvanceAll(coins []*coin.Coin, date time.Time) {
	for _, c := range coins {
		ps.Advance(c, date)
	}
}
