// Package rig defines the mining hardware domain entity.
// This package is PURE and must NOT import any infrastructure packages.
package rig

const (
	// MaxLevel is the highest rig level. Level 0 means the slot is unowned.
	MaxLevel = 4

	// GPULimit caps the accelerators attachable to one rig.
	GPULimit = 10

	// GPUCost is the flat price of one accelerator.
	GPUCost = 400.0

	// SlotCount is the fixed number of rig slots per game.
	SlotCount = 6
)

// LevelCosts[i] is the price of moving a rig from level i to level i+1.
var LevelCosts = [MaxLevel]float64{1000, 5000, 25000, 100000}

// Rig is one mining hardware slot. Level and GPU count only ever grow
// within a game; there is no sell-back.
type Rig struct {
	ID           int    `json:"id"`
	Level        int    `json:"level"`
	GPUs         int    `json:"gpus"`
	MiningCoinID string `json:"mining_coin_id"` // empty = not assigned
}

// HashRate is the rig's mining power: level*5 + gpus*10.
func (r *Rig) HashRate() float64 {
	return float64(r.Level)*5 + float64(r.GPUs)*10
}

// Active reports whether the rig produces yield this tick.
func (r *Rig) Active() bool {
	return r.Level > 0 && r.GPUs > 0 && r.MiningCoinID != ""
}

// UpgradeCost returns the price of the next level. ok is false when the
// rig is already at MaxLevel.
func (r *Rig) UpgradeCost() (cost float64, ok bool) {
	if r.Level >= MaxLevel {
		return 0, false
	}
	return LevelCosts[r.Level], true
}

// NewSlots builds the fixed fleet of unowned rig slots.
func NewSlots() []*Rig {
	rigs := make([]*Rig, SlotCount)
	for i := range rigs {
		rigs[i] = &Rig{ID: i}
	}
	return rigs
}
