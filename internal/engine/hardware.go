package engine

import (
	"fmt"

	"go.uber.org/zap"

	"cryptotycoon/internal/domain/rig"
	"cryptotycoon/internal/game"
)

// HardwareSystem handles the mining-rig shop: slot purchase, level
// upgrades, GPU purchases and mining-target assignment. Levels and GPU
// counts only ever grow; there is no sell-back.
type HardwareSystem struct {
	log *zap.Logger
}

// NewHardwareSystem creates the rig shop.
func NewHardwareSystem(log *zap.Logger) *HardwareSystem {
	return &HardwareSystem{log: log}
}

// BuyOrUpgrade buys an unowned rig slot or raises an owned one by one
// level, debiting the level-indexed cost.
func (hs *HardwareSystem) BuyOrUpgrade(st *game.State, rigID int) bool {
	r := st.Rig(rigID)
	if r == nil {
		st.Message = "Unknown PC slot."
		return false
	}
	cost, ok := r.UpgradeCost()
	if !ok {
		st.Message = fmt.Sprintf("PC %d is already at maximum level.", rigID+1)
		return false
	}

	verb := "upgrade"
	if r.Level == 0 {
		verb = "buy"
	}
	if !st.SandboxMode && st.Cash < cost {
		st.Message = fmt.Sprintf("Not enough cash to %s PC. Cost: $%.0f", verb, cost)
		return false
	}

	if !st.SandboxMode {
		st.Cash -= cost
	}
	r.Level++
	if verb == "buy" {
		st.Message = fmt.Sprintf("Successfully bought PC %d!", rigID+1)
	} else {
		st.Message = fmt.Sprintf("Successfully upgraded PC %d to Level %d!", rigID+1, r.Level)
	}
	hs.log.Info("rig purchased/upgraded",
		zap.Int("rig", rigID),
		zap.Int("level", r.Level),
		zap.Float64("cost", cost))
	return true
}

// BuyGPU attaches one accelerator to an owned rig, up to the limit.
func (hs *HardwareSystem) BuyGPU(st *game.State, rigID int) bool {
	r := st.Rig(rigID)
	if r == nil {
		st.Message = "Unknown PC slot."
		return false
	}
	if r.Level == 0 {
		st.Message = fmt.Sprintf("Buy PC %d before adding GPUs.", rigID+1)
		return false
	}
	if r.GPUs >= rig.GPULimit {
		st.Message = fmt.Sprintf("PC %d already has the maximum number of GPUs.", rigID+1)
		return false
	}
	if !st.SandboxMode && st.Cash < rig.GPUCost {
		st.Message = fmt.Sprintf("Not enough cash to buy GPU. Cost: $%.0f", rig.GPUCost)
		return false
	}

	if !st.SandboxMode {
		st.Cash -= rig.GPUCost
	}
	r.GPUs++
	st.Message = fmt.Sprintf("Successfully added a GPU to PC %d!", rigID+1)
	hs.log.Info("gpu purchased", zap.Int("rig", rigID), zap.Int("gpus", r.GPUs))
	return true
}

// SetMiningCoin assigns the rig's mining target. An empty coinID stops
// mining. The stablecoin cannot be mined.
func (hs *HardwareSystem) SetMiningCoin(st *game.State, rigID int, coinID string) bool {
	r := st.Rig(rigID)
	if r == nil {
		st.Message = "Unknown PC slot."
		return false
	}
	if coinID == "" {
		r.MiningCoinID = ""
		st.Message = fmt.Sprintf("PC %d has stopped mining.", rigID+1)
		return true
	}

	c := st.Coin(coinID)
	if c == nil {
		st.Message = "Unknown coin."
		return false
	}
	if c.IsStable() {
		st.Message = fmt.Sprintf("%s cannot be mined.", c.Name)
		return false
	}

	r.MiningCoinID = coinID
	st.Message = fmt.Sprintf("PC %d is now mining %s.", rigID+1, c.Name)
	return true
}
