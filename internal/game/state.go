// Package game holds the aggregate game state and the save-slot snapshot
// types. State carries no behavior beyond lookups; all transitions live in
// the engine systems so they stay atomic under the engine lock.
package game

import (
	"time"

	"cryptotycoon/internal/domain/coin"
	"cryptotycoon/internal/domain/rig"
)

const (
	// NormalStartingCash is the bankroll of a fresh normal-mode game.
	NormalStartingCash = 10000.0

	// SandboxStartingCash is the bootstrap bankroll when sandbox mode
	// is enabled.
	SandboxStartingCash = 1000000000.0

	// MaxSaveSlots is the fixed size of the save-slot array.
	MaxSaveSlots = 10

	// DefaultTimeSpeed is the days-per-tick of a fresh game.
	DefaultTimeSpeed = 1
)

// TimeSpeeds lists the selectable days-per-tick values. 0 pauses the clock.
var TimeSpeeds = []int{0, 1, 7, 30}

// ValidTimeSpeed reports whether speed is one of the selectable values.
func ValidTimeSpeed(speed int) bool {
	for _, s := range TimeSpeeds {
		if s == speed {
			return true
		}
	}
	return false
}

// News is the latest headline shown to the player.
type News struct {
	Headline string `json:"headline"`
	Content  string `json:"content"`
	IsAI     bool   `json:"is_ai"`
}

// State is the aggregate root of one game session.
//
// Invariants (owned by the engine, asserted by tests):
//   - every holding quantity >= 0
//   - cash >= 0 unless SandboxMode is set
//   - every coin price > 0, and >= coin.PriceFloor except the stablecoin
//   - history length <= coin.HistoryCap, chronologically ordered
//   - rig level in [0, rig.MaxLevel], GPUs in [0, rig.GPULimit]
//   - SelectedCoinID always references a catalog entry
type State struct {
	Coins          []*coin.Coin       `json:"coins"`
	SelectedCoinID string             `json:"selected_coin_id"`
	Cash           float64            `json:"cash"`
	Holdings       map[string]float64 `json:"holdings"`
	Message        string             `json:"message"`
	SandboxMode    bool               `json:"sandbox_mode"`
	InitialCash    float64            `json:"initial_cash"`
	News           News               `json:"news"`
	TimeStep       int64              `json:"time_step"`
	GameDate       time.Time          `json:"game_date"`
	TimeSpeed      int                `json:"time_speed"`
	Rigs           []*rig.Rig         `json:"rigs"`

	// GeneratingAdvice suppresses duplicate pro-advice requests while one
	// is outstanding. Transient; cleared on every completion path.
	GeneratingAdvice bool `json:"generating_advice"`
}

// NewState builds a fresh game session starting now.
func NewState(sandbox bool, now time.Time) *State {
	cash := NormalStartingCash
	if sandbox {
		cash = SandboxStartingCash
	}
	return &State{
		Coins:          coin.Catalog(now),
		SelectedCoinID: coin.DefaultCoinID,
		Cash:           cash,
		Holdings:       make(map[string]float64),
		Message:        "Welcome! Choose a coin and start trading.",
		SandboxMode:    sandbox,
		InitialCash:    cash,
		News: News{
			Headline: "Market is Stable",
			Content:  "No major news affecting the crypto market today.",
		},
		TimeStep:  1,
		GameDate:  now,
		TimeSpeed: DefaultTimeSpeed,
		Rigs:      rig.NewSlots(),
	}
}

// Coin returns the catalog entry with the given id, or nil.
func (s *State) Coin(id string) *coin.Coin {
	for _, c := range s.Coins {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// SelectedCoin returns the coin the trading panel points at.
func (s *State) SelectedCoin() *coin.Coin {
	return s.Coin(s.SelectedCoinID)
}

// Holding returns the owned quantity of a coin. Absent entries are zero.
func (s *State) Holding(coinID string) float64 {
	return s.Holdings[coinID]
}

// Rig returns the rig slot with the given id, or nil.
func (s *State) Rig(id int) *rig.Rig {
	for _, r := range s.Rigs {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// NetWorth is cash plus the market value of all holdings.
func (s *State) NetWorth() float64 {
	worth := s.Cash
	for id, amount := range s.Holdings {
		if c := s.Coin(id); c != nil {
			worth += c.Price * amount
		}
	}
	return worth
}

// GameOver reports the terminal condition: cash depleted outside sandbox.
func (s *State) GameOver() bool {
	return s.Cash <= 0 && !s.SandboxMode
}

// Clone returns an independent deep copy of the state. Snapshots handed
// outside the engine lock must be clones, never the live aggregate.
func (s *State) Clone() *State {
	dup := *s
	dup.Coins = make([]*coin.Coin, len(s.Coins))
	for i, c := range s.Coins {
		dup.Coins[i] = c.Clone()
	}
	dup.Holdings = make(map[string]float64, len(s.Holdings))
	for id, amount := range s.Holdings {
		dup.Holdings[id] = amount
	}
	dup.Rigs = make([]*rig.Rig, len(s.Rigs))
	for i, r := range s.Rigs {
		rc := *r
		dup.Rigs[i] = &rc
	}
	return &dup
}
