package engine

import (
	"go.uber.org/zap"

	"cryptotycoon/internal/domain/coin"
	"cryptotycoon/internal/domain/rig"
	"cryptotycoon/internal/game"
)

// dollarsPerHashPerDay converts hash rate into mined dollar value per
// in-game day.
const dollarsPerHashPerDay = 0.5

// MiningSystem computes per-tick yields for the rig fleet.
//
// Yields are valued at the coin price AFTER the same-tick pricing advance.
// The order is fixed; see DESIGN.md.
type MiningSystem struct {
	log *zap.Logger
}

// NewMiningSystem creates the mining model.
func NewMiningSystem(log *zap.Logger) *MiningSystem {
	return &MiningSystem{log: log}
}

// Yield returns the coins produced by one rig over elapsedDays in-game
// days. Inactive rigs and non-positive prices yield nothing.
func (ms *MiningSystem) Yield(r *rig.Rig, c *coin.Coin, elapsedDays int) float64 {
	if !r.Active() || c == nil || c.Price <= 0 {
		return 0
	}
	dollarsMined := r.HashRate() * dollarsPerHashPerDay * float64(elapsedDays)
	return dollarsMined / c.Price
}

// Collect accumulates the yields of every rig into one per-coin delta map,
// so the engine can merge all mining output into holdings in a single
// update with no partial states visible.
func (ms *MiningSystem) Collect(st *game.State, elapsedDays int) map[string]float64 {
	deltas := make(map[string]float64)
	for _, r := range st.Rigs {
		if !r.Active() {
			continue
		}
		mined := ms.Yield(r, st.Coin(r.MiningCoinID), elapsedDays)
		if mined > 0 {
			deltas[r.MiningCoinID] += mined
		}
	}
	return deltas
}
