package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptotycoon/internal/game"
	"cryptotycoon/internal/infra/ai"
	"cryptotycoon/internal/platform/metrics"
)

// adviceHistorySamples is how many recent price points per coin go into
// the advice prompt.
const adviceHistorySamples = 20

// SlotRecord is the engine-side view of one persisted save slot. A nil
// State means the slot is empty.
type SlotRecord struct {
	Index     int
	State     []byte
	LastSaved *time.Time
}

// SlotStore is the persistence contract the engine consumes. Snapshots
// travel as opaque JSON; the store never inspects them.
type SlotStore interface {
	Load(ctx context.Context) ([]SlotRecord, error)
	Save(ctx context.Context, index int, state []byte, savedAt time.Time) error
	Clear(ctx context.Context, index int) error
}

// Snapshot is the consistent view broadcast after every committed
// transition. Outside a session only the slot summaries are populated.
type Snapshot struct {
	InGame   bool          `json:"in_game"`
	State    *game.State   `json:"state,omitempty"`
	NetWorth float64       `json:"net_worth,omitempty"`
	Slots    []SlotSummary `json:"slots,omitempty"`
}

// SlotSummary is the menu-facing description of one save slot.
type SlotSummary struct {
	Index     int        `json:"index"`
	Empty     bool       `json:"empty"`
	LastSaved *time.Time `json:"last_saved,omitempty"`
}

// Engine is the central orchestrator. One mutex serializes every state
// transition - ticks, player commands, and async provider merges - so no
// transition ever observes a partially updated state.
type Engine struct {
	mu  sync.Mutex
	log *zap.Logger

	// Sub-systems
	pricing  *PricingSystem
	mining   *MiningSystem
	market   *MarketSystem
	actions  *ActionSystem
	hardware *HardwareSystem

	// External collaborators
	provider ai.Provider
	slots    SlotStore

	// State
	state      *game.State
	activeSlot int // -1 while at slot selection

	newsCooldown time.Duration
	lastNewsReq  time.Time
	newsInFlight bool

	onCommit func(Snapshot)
	now      func() time.Time
}

// New wires up the core game systems and dependencies. The random source
// is shared by all stochastic systems so a fixed seed replays a run.
func New(log *zap.Logger, rng *rand.Rand, provider ai.Provider, slots SlotStore, newsCooldown time.Duration) *Engine {
	return &Engine{
		log:          log,
		pricing:      NewPricingSystem(rng, log),
		mining:       NewMiningSystem(log),
		market:       NewMarketSystem(rng, log),
		actions:      NewActionSystem(rng, log),
		hardware:     NewHardwareSystem(log),
		provider:     provider,
		slots:        slots,
		activeSlot:   -1,
		newsCooldown: newsCooldown,
		now:          time.Now,
	}
}

// SetOnCommit registers the single commit callback. Must be called once at
// wiring time, before the scheduler starts.
func (e *Engine) SetOnCommit(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onCommit = fn
}

// Snapshot returns the current consistent view, for late-joining clients.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// snapshotLocked deep-copies the state so callers may read and marshal the
// snapshot after the lock is released, concurrently with later ticks.
func (e *Engine) snapshotLocked() Snapshot {
	if e.state == nil {
		return Snapshot{Slots: e.slotSummariesLocked()}
	}
	return Snapshot{
		InGame:   true,
		State:    e.state.Clone(),
		NetWorth: e.state.NetWorth(),
	}
}

// commitLocked finishes a transition: it runs game-over detection and
// publishes the new consistent view. Callers hold the lock.
func (e *Engine) commitLocked() {
	if e.state != nil && e.state.GameOver() {
		e.log.Warn("game over: cash depleted",
			zap.Int("slot", e.activeSlot),
			zap.Int64("tick", e.state.TimeStep))
		e.state = nil
		e.activeSlot = -1
	}
	if e.onCommit != nil {
		e.onCommit(e.snapshotLocked())
	}
}

// withSession runs fn as one atomic transition against the active session,
// then commits. No-op outside a session.
func (e *Engine) withSession(fn func(st *game.State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return
	}
	fn(e.state)
	e.commitLocked()
}

// Tick advances the simulation by one step: in-game date, all coin prices,
// then mining yields merged into holdings - one atomic transition.
// A paused clock (speed 0) makes it a no-op.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	if st == nil || st.TimeSpeed == 0 {
		return
	}

	start := time.Now()
	st.GameDate = st.GameDate.AddDate(0, 0, st.TimeSpeed)
	e.pricing.AdvanceAll(st.Coins, st.GameDate)
	for id, delta := range e.mining.Collect(st, st.TimeSpeed) {
		st.Holdings[id] += delta
	}
	st.TimeStep++
	metrics.Get().RecordTick(time.Since(start))

	e.commitLocked()
}

// SelectCoin points the trading panel at another catalog entry.
func (e *Engine) SelectCoin(coinID string) {
	e.withSession(func(st *game.State) {
		c := st.Coin(coinID)
		if c == nil {
			st.Message = "Unknown coin."
			return
		}
		st.SelectedCoinID = coinID
		st.Message = fmt.Sprintf("Selected %s", c.Name)
	})
}

// Buy purchases amount units of the selected coin.
func (e *Engine) Buy(amount float64) {
	e.withSession(func(st *game.State) {
		e.market.Buy(st, amount)
	})
}

// Sell liquidates amount units of the selected coin.
func (e *Engine) Sell(amount float64) {
	e.withSession(func(st *game.State) {
		e.market.Sell(st, amount)
	})
}

// SellAll liquidates the entire holding of the selected coin.
func (e *Engine) SellAll() {
	e.withSession(func(st *game.State) {
		e.market.SellAll(st)
	})
}

// Promote runs the flat-cost promotion action on the selected coin.
func (e *Engine) Promote() {
	e.withSession(func(st *game.State) {
		e.actions.Promote(st)
	})
}

// Bribe runs the flat-cost bribery action on the selected coin.
func (e *Engine) Bribe() {
	e.withSession(func(st *game.State) {
		e.actions.Bribe(st)
	})
}

// ReadNews generates a procedural news event on demand.
func (e *Engine) ReadNews() {
	e.withSession(func(st *game.State) {
		e.actions.GenerateNews(st)
	})
}

// BuyOrUpgradeRig buys or upgrades one mining rig slot.
func (e *Engine) BuyOrUpgradeRig(rigID int) {
	e.withSession(func(st *game.State) {
		e.hardware.BuyOrUpgrade(st, rigID)
	})
}

// BuyGPU attaches one accelerator to a rig.
func (e *Engine) BuyGPU(rigID int) {
	e.withSession(func(st *game.State) {
		e.hardware.BuyGPU(st, rigID)
	})
}

// SetMiningCoin assigns or clears a rig's mining target.
func (e *Engine) SetMiningCoin(rigID int, coinID string) {
	e.withSession(func(st *game.State) {
		e.hardware.SetMiningCoin(st, rigID, coinID)
	})
}

// SetTimeSpeed changes the days-per-tick simulation speed. 0 pauses.
func (e *Engine) SetTimeSpeed(speed int) {
	e.withSession(func(st *game.State) {
		if !game.ValidTimeSpeed(speed) {
			st.Message = "Unsupported time speed."
			return
		}
		st.TimeSpeed = speed
		if speed == 0 {
			st.Message = "Simulation paused."
		} else {
			st.Message = fmt.Sprintf("Time now advances %d day(s) per tick.", speed)
		}
	})
}

// PollNews dispatches an asynchronous AI news request. Requests inside the
// cooldown window, or while one is already outstanding, are skipped
// silently. The result merges against the state as it is at completion
// time, never the dispatch-time state.
func (e *Engine) PollNews(ctx context.Context) {
	e.mu.Lock()
	st := e.state
	if st == nil || st.TimeSpeed == 0 || e.newsInFlight || !e.provider.IsAvailable() {
		e.mu.Unlock()
		return
	}
	now := e.now()
	if now.Sub(e.lastNewsReq) < e.newsCooldown {
		e.mu.Unlock()
		return
	}
	e.lastNewsReq = now
	e.newsInFlight = true
	refs := make([]ai.CoinRef, len(st.Coins))
	for i, c := range st.Coins {
		refs[i] = ai.CoinRef{ID: c.ID, Name: c.Name, Symbol: c.Symbol}
	}
	e.mu.Unlock()

	go func() {
		ev, err := e.provider.GenerateNews(ctx, refs)

		e.mu.Lock()
		defer e.mu.Unlock()
		e.newsInFlight = false
		st := e.state
		if st == nil {
			// Session ended while the call was outstanding; discard.
			return
		}
		if err != nil {
			e.log.Warn("news provider failed", zap.Error(err))
			st.Message = "AI news service is currently unavailable."
			e.commitLocked()
			return
		}
		if !e.actions.ApplyAINews(st, ev) {
			st.Message = "AI news service is currently unavailable."
		}
		e.commitLocked()
	}()
}

// RequestAdvice dispatches an asynchronous pro-advice request for a flat
// fee. A request-in-flight flag suppresses duplicates; the fee and the
// advice merge are re-validated against the state at completion time.
func (e *Engine) RequestAdvice(ctx context.Context) {
	e.mu.Lock()
	st := e.state
	if st == nil {
		e.mu.Unlock()
		return
	}
	if st.GeneratingAdvice {
		e.mu.Unlock()
		return
	}
	if !e.provider.IsAvailable() {
		st.Message = "The AI analyst is unavailable right now. Try again later."
		e.commitLocked()
		e.mu.Unlock()
		return
	}
	if !st.SandboxMode && st.Cash < AdviceCost {
		st.Message = "Not enough cash to buy Pro Advice."
		e.commitLocked()
		e.mu.Unlock()
		return
	}
	st.GeneratingAdvice = true
	st.Message = "AI analyst is thinking..."
	histories := make([]ai.CoinHistory, len(st.Coins))
	for i, c := range st.Coins {
		recent := c.RecentHistory(adviceHistorySamples)
		samples := make([]ai.PriceSample, len(recent))
		for j, p := range recent {
			samples[j] = ai.PriceSample{Date: p.Date, Price: p.Price}
		}
		histories[i] = ai.CoinHistory{ID: c.ID, Name: c.Name, History: samples}
	}
	e.commitLocked()
	e.mu.Unlock()

	go func() {
		advice, err := e.provider.GenerateAdvice(ctx, histories)

		e.mu.Lock()
		defer e.mu.Unlock()
		st := e.state
		if st == nil {
			return
		}
		st.GeneratingAdvice = false
		if err != nil {
			e.log.Warn("advice provider failed", zap.Error(err))
			st.Message = "The AI analyst is unavailable right now. Try again later."
			e.commitLocked()
			return
		}

		// Re-validate against the current state: the market moved while
		// the analyst was thinking.
		if st.Coin(advice.Buy.CoinID) == nil || st.Coin(advice.Sell.CoinID) == nil {
			st.Message = "The AI analyst is unavailable right now. Try again later."
			e.commitLocked()
			return
		}
		if !st.SandboxMode && st.Cash < AdviceCost {
			st.Message = "Not enough cash to buy Pro Advice."
			e.commitLocked()
			return
		}

		swapped := e.actions.MaybeSwapAdvice(advice)
		if !st.SandboxMode {
			st.Cash -= AdviceCost
		}
		buy := st.Coin(advice.Buy.CoinID)
		sell := st.Coin(advice.Sell.CoinID)
		msg := fmt.Sprintf("AI says: %q",
			fmt.Sprintf("Consider buying %s because %s. It might be wise to avoid %s because %s.",
				buy.Name, advice.Buy.Reason, sell.Name, advice.Sell.Reason))
		if swapped {
			msg = "AI Advice (Inaccurate): The AI seems confused today... " + msg
		}
		st.Message = msg
		e.commitLocked()
	}()
}
