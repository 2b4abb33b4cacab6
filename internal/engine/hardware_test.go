package engine

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"cryptotycoon/internal/domain/rig"
	"cryptotycoon/internal/game"
)

func newTestHardware() *HardwareSystem {
	return NewHardwareSystem(zap.NewNop())
}

func TestBuyOrUpgradeFullLadder(t *testing.T) {
	hs := newTestHardware()
	st := game.NewState(false, time.Now())
	st.Cash = 200000

	wantCash := st.Cash
	for level := 1; level <= rig.MaxLevel; level++ {
		if !hs.BuyOrUpgrade(st, 0) {
			t.Fatalf("purchase to level %d should succeed", level)
		}
		wantCash -= rig.LevelCosts[level-1]
		if st.Cash != wantCash {
			t.Fatalf("cash after level %d = %v, want %v", level, st.Cash, wantCash)
		}
		if st.Rig(0).Level != level {
			t.Fatalf("rig level = %d, want %d", st.Rig(0).Level, level)
		}
	}

	if hs.BuyOrUpgrade(st, 0) {
		t.Error("upgrade past max level should be rejected")
	}
	if !strings.Contains(st.Message, "maximum level") {
		t.Errorf("unexpected message %q", st.Message)
	}
}

func TestBuyOrUpgradeInsufficientCash(t *testing.T) {
	hs := newTestHardware()
	st := game.NewState(false, time.Now())
	st.Cash = 999

	if hs.BuyOrUpgrade(st, 0) {
		t.Fatal("underfunded purchase should be rejected")
	}
	if st.Cash != 999 || st.Rig(0).Level != 0 {
		t.Error("rejected purchase mutated state")
	}
}

func TestBuyOrUpgradeUnknownSlot(t *testing.T) {
	hs := newTestHardware()
	st := game.NewState(false, time.Now())
	if hs.BuyOrUpgrade(st, rig.SlotCount) {
		t.Error("out-of-range slot should be rejected")
	}
}

func TestBuyGPU(t *testing.T) {
	hs := newTestHardware()
	st := game.NewState(false, time.Now())
	st.Cash = 100000

	if hs.BuyGPU(st, 0) {
		t.Fatal("GPU on an unowned rig should be rejected")
	}

	st.Rig(0).Level = 1
	for i := 1; i <= rig.GPULimit; i++ {
		if !hs.BuyGPU(st, 0) {
			t.Fatalf("GPU purchase %d should succeed", i)
		}
	}
	if st.Rig(0).GPUs != rig.GPULimit {
		t.Fatalf("gpus = %d, want %d", st.Rig(0).GPUs, rig.GPULimit)
	}
	if st.Cash != 100000-float64(rig.GPULimit)*rig.GPUCost {
		t.Errorf("cash = %v after %d GPUs", st.Cash, rig.GPULimit)
	}

	if hs.BuyGPU(st, 0) {
		t.Error("GPU past the limit should be rejected")
	}
}

func TestBuyGPUInsufficientCash(t *testing.T) {
	hs := newTestHardware()
	st := game.NewState(false, time.Now())
	st.Rig(0).Level = 1
	st.Cash = rig.GPUCost - 1

	if hs.BuyGPU(st, 0) {
		t.Fatal("underfunded GPU purchase should be rejected")
	}
	if st.Rig(0).GPUs != 0 {
		t.Error("rejected purchase added a GPU")
	}
}

func TestSetMiningCoin(t *testing.T) {
	hs := newTestHardware()
	st := game.NewState(false, time.Now())
	st.Rig(0).Level = 1

	if !hs.SetMiningCoin(st, 0, "eth") {
		t.Fatal("assigning a catalog coin should succeed")
	}
	if st.Rig(0).MiningCoinID != "eth" {
		t.Errorf("mining target = %q", st.Rig(0).MiningCoinID)
	}

	if hs.SetMiningCoin(st, 0, "nope") {
		t.Error("unknown coin should be rejected")
	}
	if st.Rig(0).MiningCoinID != "eth" {
		t.Error("rejected assignment changed the target")
	}

	if hs.SetMiningCoin(st, 0, "usdt") {
		t.Error("the stablecoin cannot be a mining target")
	}
	if !strings.Contains(st.Message, "cannot be mined") {
		t.Errorf("unexpected message %q", st.Message)
	}

	if !hs.SetMiningCoin(st, 0, "") {
		t.Fatal("clearing the target should succeed")
	}
	if st.Rig(0).MiningCoinID != "" {
		t.Error("target not cleared")
	}
}
