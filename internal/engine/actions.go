package engine

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"cryptotycoon/internal/domain/coin"
	"cryptotycoon/internal/game"
	"cryptotycoon/internal/infra/ai"
)

const (
	// PromoteCost is the flat fee of a promotion campaign.
	PromoteCost = 400.0
	// BribeCost is the flat fee of bribing a coin's owners.
	BribeCost = 100000.0
	// AdviceCost is the flat fee of one pro-advice consultation.
	AdviceCost = 150.0

	promoteBoost = 1.05
	bribeBoost   = 2.0

	// targetedNewsChance is the probability a procedural news event
	// targets a coin instead of being market flavor.
	targetedNewsChance = 0.7

	// adviceSwapChance models imperfect advice: the buy/sell pair is
	// swapped before display with this probability.
	adviceSwapChance = 0.2
)

// ActionSystem applies flat-cost market actions and narrative events
// (procedural or AI-generated) to coin prices and game messaging.
type ActionSystem struct {
	rng *rand.Rand
	log *zap.Logger
}

// NewActionSystem creates the action/event system with an injected random
// source.
func NewActionSystem(rng *rand.Rand, log *zap.Logger) *ActionSystem {
	return &ActionSystem{rng: rng, log: log}
}

// Promote pays the promotion fee and boosts the selected coin by 5%.
func (as *ActionSystem) Promote(st *game.State) bool {
	c := st.SelectedCoin()
	if c == nil {
		st.Message = "No coin selected."
		return false
	}
	msg := fmt.Sprintf("You paid $%.0f to promote %s! Price increased.", PromoteCost, c.Name)
	return as.boostPrice(st, c, PromoteCost, promoteBoost, msg)
}

// Bribe pays the bribery fee and doubles the selected coin's price.
func (as *ActionSystem) Bribe(st *game.State) bool {
	c := st.SelectedCoin()
	if c == nil {
		st.Message = "No coin selected."
		return false
	}
	msg := fmt.Sprintf("You paid $%.0f to bribe the owners of %s! Price doubled!", BribeCost, c.Name)
	return as.boostPrice(st, c, BribeCost, bribeBoost, msg)
}

// boostPrice runs the shared cash check, debit, price multiply and history
// append for flat-cost actions.
func (as *ActionSystem) boostPrice(st *game.State, c *coin.Coin, cost, multiplier float64, msg string) bool {
	if !st.SandboxMode && st.Cash < cost {
		st.Message = fmt.Sprintf("Not enough cash for this action (Cost: $%.0f).", cost)
		return false
	}
	if !st.SandboxMode {
		st.Cash -= cost
	}
	c.SetPrice(c.Price*multiplier, st.GameDate)
	st.Message = msg
	as.log.Info("market action applied",
		zap.String("coin", c.ID),
		zap.Float64("cost", cost),
		zap.Float64("multiplier", multiplier))
	return true
}

// GenerateNews produces a procedural news event. 70% of the time it
// targets one uniformly chosen coin with a ±(5-15)% move; otherwise it is
// a flavor event that moves no price.
func (as *ActionSystem) GenerateNews(st *game.State) {
	if as.rng.Float64() >= targetedNewsChance {
		st.News = game.News{
			Headline: "Market Sentiments are Mixed",
			Content:  "While some tokens see minor gains, others face slight downturns. Overall market remains unpredictable.",
		}
		st.Message = "News updated! Check the headlines."
		return
	}

	target := st.Coins[as.rng.Intn(len(st.Coins))]
	positive := as.rng.Float64() < 0.5
	changePercent := as.rng.Float64()*0.10 + 0.05

	multiplier := 1 - changePercent
	headline := fmt.Sprintf("Regulatory Concerns for %s (%s)!", target.Name, target.Symbol)
	content := fmt.Sprintf("Negative reports about %s's compliance have surfaced, leading to a significant price drop.", target.Name)
	if positive {
		multiplier = 1 + changePercent
		headline = fmt.Sprintf("Positive Outlook for %s (%s)!", target.Name, target.Symbol)
		content = fmt.Sprintf("A recent breakthrough in %s's technology has investors excited, causing a surge in its value.", target.Name)
	}

	target.SetPrice(target.Price*multiplier, st.GameDate)
	st.News = game.News{Headline: headline, Content: content}
	st.Message = "News updated! Check the headlines."
	as.log.Info("procedural news",
		zap.String("coin", target.ID),
		zap.Bool("positive", positive),
		zap.Float64("change_pct", changePercent*100))
}

// ApplyAINews merges an externally generated news event into the current
// state. The event is re-validated here because the state may have moved
// while the provider call was outstanding. Returns false when the event is
// discarded.
func (as *ActionSystem) ApplyAINews(st *game.State, ev *ai.NewsEvent) bool {
	target := st.Coin(ev.CoinID)
	if target == nil {
		as.log.Warn("AI news targets unknown coin", zap.String("coin", ev.CoinID))
		return false
	}
	if ev.Impact < ai.MinImpact || ev.Impact > ai.MaxImpact {
		as.log.Warn("AI news impact out of range", zap.Int("impact", ev.Impact))
		return false
	}

	impact := float64(ev.Impact) / 100
	multiplier := 1 - impact
	if ev.Sentiment == ai.SentimentPositive {
		multiplier = 1 + impact
	}
	target.SetPrice(target.Price*multiplier, st.GameDate)

	st.News = game.News{Headline: ev.Headline, Content: ev.Content, IsAI: true}
	st.Message = fmt.Sprintf("AI News Alert! Market reacts to news about %s.", target.Name)
	as.log.Info("AI news applied",
		zap.String("coin", target.ID),
		zap.String("sentiment", string(ev.Sentiment)),
		zap.Int("impact", ev.Impact))
	return true
}

// MaybeSwapAdvice swaps the buy/sell recommendation pair with 20%
// probability, modeling an imperfect analyst. Reports whether it swapped.
func (as *ActionSystem) MaybeSwapAdvice(advice *ai.ProAdvice) bool {
	if as.rng.Float64() >= adviceSwapChance {
		return false
	}
	advice.Buy, advice.Sell = advice.Sell, advice.Buy
	return true
}
