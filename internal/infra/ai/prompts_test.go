package ai

import (
	"errors"
	"strings"
	"testing"
)

var testCoins = []CoinRef{
	{ID: "btc", Name: "Bitcoin", Symbol: "BTC"},
	{ID: "eth", Name: "Ethereum", Symbol: "ETH"},
}

var testHistories = []CoinHistory{
	{ID: "btc", Name: "Bitcoin"},
	{ID: "eth", Name: "Ethereum"},
}

func TestParseNewsResponse(t *testing.T) {
	raw := `{"coinId":"btc","headline":"Big Move","content":"Something happened.","sentiment":"POSITIVE","impact":15}`
	ev, err := parseNewsResponse(raw, testCoins)
	if err != nil {
		t.Fatalf("parseNewsResponse: %v", err)
	}
	if ev.CoinID != "btc" || ev.Sentiment != SentimentPositive || ev.Impact != 15 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestParseNewsResponseStripsFences(t *testing.T) {
	raw := "```json\n{\"coinId\":\"eth\",\"headline\":\"H\",\"content\":\"C\",\"sentiment\":\"NEGATIVE\",\"impact\":5}\n```"
	ev, err := parseNewsResponse(raw, testCoins)
	if err != nil {
		t.Fatalf("parseNewsResponse: %v", err)
	}
	if ev.CoinID != "eth" {
		t.Errorf("unexpected coin %q", ev.CoinID)
	}
}

func TestParseNewsResponseRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "the market went up"},
		{"unknown coin", `{"coinId":"doge","headline":"H","content":"C","sentiment":"POSITIVE","impact":10}`},
		{"bad sentiment", `{"coinId":"btc","headline":"H","content":"C","sentiment":"NEUTRAL","impact":10}`},
		{"impact too low", `{"coinId":"btc","headline":"H","content":"C","sentiment":"POSITIVE","impact":2}`},
		{"impact too high", `{"coinId":"btc","headline":"H","content":"C","sentiment":"POSITIVE","impact":90}`},
		{"missing headline", `{"coinId":"btc","headline":"","content":"C","sentiment":"POSITIVE","impact":10}`},
	}
	for _, tc := range cases {
		if _, err := parseNewsResponse(tc.raw, testCoins); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestParseAdviceResponse(t *testing.T) {
	raw := `{"buy":{"coinId":"btc","reason":"momentum"},"sell":{"coinId":"eth","reason":"stagnation"}}`
	advice, err := parseAdviceResponse(raw, testHistories)
	if err != nil {
		t.Fatalf("parseAdviceResponse: %v", err)
	}
	if advice.Buy.CoinID != "btc" || advice.Sell.CoinID != "eth" {
		t.Errorf("unexpected advice %+v", advice)
	}
}

func TestParseAdviceResponseSameCoin(t *testing.T) {
	raw := `{"buy":{"coinId":"btc","reason":"a"},"sell":{"coinId":"btc","reason":"b"}}`
	_, err := parseAdviceResponse(raw, testHistories)
	if !errors.Is(err, ErrSameCoinAdvice) {
		t.Errorf("expected ErrSameCoinAdvice, got %v", err)
	}
}

func TestParseAdviceResponseRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "buy low sell high"},
		{"missing sell", `{"buy":{"coinId":"btc","reason":"a"}}`},
		{"unknown buy coin", `{"buy":{"coinId":"doge","reason":"a"},"sell":{"coinId":"eth","reason":"b"}}`},
		{"unknown sell coin", `{"buy":{"coinId":"btc","reason":"a"},"sell":{"coinId":"doge","reason":"b"}}`},
	}
	for _, tc := range cases {
		if _, err := parseAdviceResponse(tc.raw, testHistories); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestNewsUserPromptListsCatalog(t *testing.T) {
	prompt := newsUserPrompt(testCoins)
	for _, c := range testCoins {
		if !strings.Contains(prompt, c.ID) {
			t.Errorf("prompt is missing coin id %q", c.ID)
		}
	}
}
