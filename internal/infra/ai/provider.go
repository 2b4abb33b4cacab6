// Package ai provides the LLM integration layer for the market simulator:
// generated news events and pro trading advice. The engine consumes the
// agnostic Provider interface without knowing which backend is behind it.
package ai

import (
	"context"
	"errors"
	"time"
)

// Impact bounds for generated news, in whole percent.
const (
	MinImpact = 5
	MaxImpact = 25
)

// ErrSameCoinAdvice marks a provider contract violation: the buy and sell
// recommendations name the same coin. Callers must treat it as a failure,
// never surface it as valid advice.
var ErrSameCoinAdvice = errors.New("ai: provider recommended buying and selling the same coin")

// Sentiment is the direction of a generated news event.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
)

// CoinRef identifies one catalog entry for the news prompt.
type CoinRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// PriceSample is one history point sent with the advice prompt.
type PriceSample struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// CoinHistory carries the recent samples of one coin for the advice prompt.
type CoinHistory struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	History []PriceSample `json:"history"`
}

// NewsEvent is a validated generated news item.
type NewsEvent struct {
	CoinID    string    `json:"coinId"`
	Headline  string    `json:"headline"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment"`
	Impact    int       `json:"impact"` // absolute percent, [MinImpact, MaxImpact]
}

// Recommendation is one side of a pro-advice response.
type Recommendation struct {
	CoinID string `json:"coinId"`
	Reason string `json:"reason"`
}

// ProAdvice is a validated buy/sell recommendation pair. Buy and Sell
// always reference different coins.
type ProAdvice struct {
	Buy  Recommendation `json:"buy"`
	Sell Recommendation `json:"sell"`
}

// UsageStats tracks API usage.
type UsageStats struct {
	TotalRequests int           `json:"total_requests"`
	TotalTokens   int           `json:"total_tokens"`
	LastLatency   time.Duration `json:"last_latency"`
}

// Provider is the agnostic interface for news/advice backends. Both calls
// may fail; failures are caught at the engine boundary and never propagate
// into the tick loop.
type Provider interface {
	// GenerateNews returns one news event about a coin from the given
	// catalog, with impact within [MinImpact, MaxImpact].
	GenerateNews(ctx context.Context, coins []CoinRef) (*NewsEvent, error)

	// GenerateAdvice returns a buy/sell pair over the given histories.
	// The two recommendations reference different coins.
	GenerateAdvice(ctx context.Context, histories []CoinHistory) (*ProAdvice, error)

	// GetUsageStats returns current API usage.
	GetUsageStats() UsageStats

	// Name returns the provider name (for logging).
	Name() string

	// IsAvailable checks if the provider is configured.
	IsAvailable() bool
}
