package engine

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"cryptotycoon/internal/game"
)

func newTestMarket(seed int64) *MarketSystem {
	return NewMarketSystem(rand.New(rand.NewSource(seed)), zap.NewNop())
}

func newTradingState() *game.State {
	st := game.NewState(false, time.Now())
	st.SelectedCoinID = "btc"
	st.Coin("btc").Price = 100
	return st
}

func TestBuyRejectsNonPositiveAmounts(t *testing.T) {
	ms := newTestMarket(1)
	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		st := newTradingState()
		if ms.Buy(st, amount) {
			t.Errorf("buy of %v should be rejected", amount)
		}
		if st.Cash != game.NormalStartingCash || len(st.Holdings) != 0 {
			t.Errorf("rejected buy of %v mutated state", amount)
		}
		if st.Message != "Please enter a positive amount to buy." {
			t.Errorf("unexpected message %q", st.Message)
		}
	}
}

func TestBuyInsufficientCashLeavesStateUntouched(t *testing.T) {
	ms := newTestMarket(1)
	st := newTradingState()
	st.Cash = 50

	if ms.Buy(st, 1000) {
		t.Fatal("buy should not fill without cash")
	}
	if st.Cash != 50 {
		t.Errorf("cash changed on rejected buy: %v", st.Cash)
	}
	if st.Holding("btc") != 0 {
		t.Errorf("holdings changed on rejected buy: %v", st.Holding("btc"))
	}
	if st.Message != "Not enough cash to make this purchase." {
		t.Errorf("unexpected message %q", st.Message)
	}
}

func TestBuyDebitsWithinSlippageBounds(t *testing.T) {
	ms := newTestMarket(5)
	for i := 0; i < 500; i++ {
		st := newTradingState()
		if !ms.Buy(st, 10) {
			t.Fatal("funded buy should fill")
		}
		cost := game.NormalStartingCash - st.Cash
		if cost < 1000 || cost > 1000*(1+slippageRate)+1e-9 {
			t.Fatalf("cost %v outside [quote, quote*1.1]", cost)
		}
		if st.Holding("btc") != 10 {
			t.Fatalf("expected holding 10, got %v", st.Holding("btc"))
		}
		slipped := cost > 1000
		if slipped != strings.Contains(st.Message, "costly mistake") {
			t.Fatalf("message %q does not match slip %v", st.Message, slipped)
		}
		// The quote itself never moves on a trade.
		if st.Coin("btc").Price != 100 {
			t.Fatal("trade mutated the quote")
		}
	}
}

func TestSellMoreThanHeldRejected(t *testing.T) {
	ms := newTestMarket(1)
	st := newTradingState()
	st.Holdings["btc"] = 2

	if ms.Sell(st, 5) {
		t.Fatal("oversell should be rejected")
	}
	if st.Cash != game.NormalStartingCash || st.Holding("btc") != 2 {
		t.Error("rejected sell mutated state")
	}
	if st.Message != "You only have 2.0000 BTC to sell." {
		t.Errorf("unexpected message %q", st.Message)
	}
}

func TestSellCreditsWithinSlippageBounds(t *testing.T) {
	ms := newTestMarket(5)
	for i := 0; i < 500; i++ {
		st := newTradingState()
		st.Holdings["btc"] = 10
		if !ms.Sell(st, 10) {
			t.Fatal("covered sell should fill")
		}
		proceeds := st.Cash - game.NormalStartingCash
		if proceeds < 1000*(1-slippageRate)-1e-9 || proceeds > 1000 {
			t.Fatalf("proceeds %v outside [quote*0.9, quote]", proceeds)
		}
		if st.Holding("btc") != 0 {
			t.Fatalf("expected holding emptied, got %v", st.Holding("btc"))
		}
	}
}

func TestSellAll(t *testing.T) {
	ms := newTestMarket(1)
	st := newTradingState()

	if ms.SellAll(st) {
		t.Error("sell-all with no holding should be a no-op")
	}
	if st.Message != "You have no coins to sell." {
		t.Errorf("unexpected message %q", st.Message)
	}

	st.Holdings["btc"] = 3.5
	if !ms.SellAll(st) {
		t.Fatal("sell-all should liquidate the holding")
	}
	if st.Holding("btc") != 0 {
		t.Errorf("expected holding emptied, got %v", st.Holding("btc"))
	}
	if st.Cash <= game.NormalStartingCash {
		t.Error("sell-all did not credit proceeds")
	}
}

func TestSandboxBuySkipsDebit(t *testing.T) {
	ms := newTestMarket(1)
	st := game.NewState(true, time.Now())
	st.SelectedCoinID = "btc"
	st.Coin("btc").Price = 100

	if !ms.Buy(st, 1e6) {
		t.Fatal("sandbox buy should always fill")
	}
	if st.Cash != game.SandboxStartingCash {
		t.Errorf("sandbox buy debited cash: %v", st.Cash)
	}
	if st.Holding("btc") != 1e6 {
		t.Errorf("sandbox buy did not credit holdings: %v", st.Holding("btc"))
	}
}

func TestSandboxSellStillChecksHoldings(t *testing.T) {
	ms := newTestMarket(1)
	st := game.NewState(true, time.Now())
	st.SelectedCoinID = "btc"
	st.Coin("btc").Price = 100

	if ms.Sell(st, 1) {
		t.Error("sandbox sell must still be covered by holdings")
	}

	st.Holdings["btc"] = 1
	if !ms.Sell(st, 1) {
		t.Fatal("covered sandbox sell should fill")
	}
	if st.Cash <= game.SandboxStartingCash {
		t.Error("sandbox sell should still credit proceeds")
	}
}
