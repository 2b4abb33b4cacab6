// Prompt construction and response validation for the market simulator.
// Responses are strict JSON; anything that fails validation is an error at
// this boundary, not a game-state mutation.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const newsSystemPrompt = `You are a financial news AI for a crypto trading simulator game. Your role is to create volatility. You always respond with a single JSON object and nothing else, using this exact shape:

{
  "coinId": "<id of the coin the news is about>",
  "headline": "<creative, engaging headline; do not include the coin name>",
  "content": "<short news article, 2-3 sentences>",
  "sentiment": "POSITIVE" or "NEGATIVE",
  "impact": <integer between 5 and 25, absolute percentage impact on the price>
}`

const adviceSystemPrompt = `You are an expert crypto trading analyst for a simulator game. You always respond with a single JSON object and nothing else, using this exact shape:

{
  "buy":  {"coinId": "<id>", "reason": "<short, plausible reason>"},
  "sell": {"coinId": "<id>", "reason": "<short, plausible reason>"}
}

The "buy" and "sell" coins must be different.`

// newsUserPrompt lists the catalog the event may target.
func newsUserPrompt(coins []CoinRef) string {
	refs := make([]string, len(coins))
	for i, c := range coins {
		refs[i] = fmt.Sprintf("%s (%s) - id: %s", c.Name, c.Symbol, c.ID)
	}
	return fmt.Sprintf(
		"Generate a fictional, impactful news event about one of the following cryptocurrencies: %s. "+
			"The event can be a technological breakthrough, a major partnership, a security flaw, "+
			"a celebrity endorsement, or a regulatory challenge. "+
			"Ensure the impact is an integer between %d and %d.",
		strings.Join(refs, ", "), MinImpact, MaxImpact)
}

// adviceUserPrompt embeds the recent price data the analyst may use.
func adviceUserPrompt(histories []CoinHistory) string {
	data, _ := json.Marshal(histories)
	return fmt.Sprintf(
		"Analyze the recent price history of the following coins. Based ONLY on the provided data, "+
			"identify one coin that shows strong upward momentum (a \"buy\" signal) and one coin that shows "+
			"strong downward momentum or stagnation (a \"sell\" or \"avoid\" signal).\n\n"+
			"Available coin data:\n%s\n\nRespond with your analysis.",
		data)
}

// stripFences removes a Markdown code fence if the model wrapped its JSON
// in one.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}
	return strings.TrimSpace(raw)
}

// parseNewsResponse validates a raw model reply against the news contract.
func parseNewsResponse(raw string, coins []CoinRef) (*NewsEvent, error) {
	var ev NewsEvent
	if err := json.Unmarshal([]byte(stripFences(raw)), &ev); err != nil {
		return nil, fmt.Errorf("parse news response: %w", err)
	}

	known := false
	for _, c := range coins {
		if c.ID == ev.CoinID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("news response targets unknown coin %q", ev.CoinID)
	}
	if ev.Sentiment != SentimentPositive && ev.Sentiment != SentimentNegative {
		return nil, fmt.Errorf("news response has invalid sentiment %q", ev.Sentiment)
	}
	if ev.Impact < MinImpact || ev.Impact > MaxImpact {
		return nil, fmt.Errorf("news response impact %d out of range [%d, %d]", ev.Impact, MinImpact, MaxImpact)
	}
	if ev.Headline == "" || ev.Content == "" {
		return nil, fmt.Errorf("news response missing headline or content")
	}
	return &ev, nil
}

// parseAdviceResponse validates a raw model reply against the advice
// contract, including the buy != sell requirement.
func parseAdviceResponse(raw string, histories []CoinHistory) (*ProAdvice, error) {
	var advice ProAdvice
	if err := json.Unmarshal([]byte(stripFences(raw)), &advice); err != nil {
		return nil, fmt.Errorf("parse advice response: %w", err)
	}

	if advice.Buy.CoinID == "" || advice.Sell.CoinID == "" {
		return nil, fmt.Errorf("advice response missing a recommendation")
	}
	if advice.Buy.CoinID == advice.Sell.CoinID {
		return nil, ErrSameCoinAdvice
	}
	valid := func(id string) bool {
		for _, h := range histories {
			if h.ID == id {
				return true
			}
		}
		return false
	}
	if !valid(advice.Buy.CoinID) {
		return nil, fmt.Errorf("advice response recommends unknown coin %q", advice.Buy.CoinID)
	}
	if !valid(advice.Sell.CoinID) {
		return nil, fmt.Errorf("advice response recommends unknown coin %q", advice.Sell.CoinID)
	}
	return &advice, nil
}
