// OpenAI-compatible chat-completions adapter implementing the Provider
// interface. Any endpoint speaking the same protocol works via the base
// URL override.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"cryptotycoon/internal/platform/metrics"
)

// OpenAIProvider implements Provider against the chat-completions API.
// Safe for concurrent use; a news poll and an advice request may be in
// flight at the same time.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	statsMu    sync.Mutex
	usageStats UsageStats
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

// NewOpenAIProvider creates a new adapter. An empty apiKey leaves the
// provider constructed but unavailable.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "OpenAI"
}

// IsAvailable checks if the API key is configured.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// GenerateNews asks the model for one news event and validates the reply.
func (p *OpenAIProvider) GenerateNews(ctx context.Context, coins []CoinRef) (*NewsEvent, error) {
	raw, err := p.complete(ctx, newsSystemPrompt, newsUserPrompt(coins), 1.0)
	if err != nil {
		return nil, err
	}
	return parseNewsResponse(raw, coins)
}

// GenerateAdvice asks the model for a buy/sell pair and validates the
// reply, including the buy != sell contract.
func (p *OpenAIProvider) GenerateAdvice(ctx context.Context, histories []CoinHistory) (*ProAdvice, error) {
	raw, err := p.complete(ctx, adviceSystemPrompt, adviceUserPrompt(histories), 0.5)
	if err != nil {
		return nil, err
	}
	return parseAdviceResponse(raw, histories)
}

// complete runs one chat-completion round trip and returns the raw text.
func (p *OpenAIProvider) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if !p.IsAvailable() {
		return "", fmt.Errorf("AI API key not configured")
	}

	oaiReq := openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   1024,
		Temperature: temperature,
	}

	body, err := json.Marshal(oaiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	latency := time.Since(start)
	metrics.Get().RecordProviderCall(latency, err)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var oaiResp openAIResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(oaiResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	p.statsMu.Lock()
	p.usageStats.TotalRequests++
	p.usageStats.TotalTokens += oaiResp.Usage.TotalTokens
	p.usageStats.LastLatency = latency
	p.statsMu.Unlock()

	return oaiResp.Choices[0].Message.Content, nil
}

// GetUsageStats returns current usage statistics.
func (p *OpenAIProvider) GetUsageStats() UsageStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.usageStats
}

// Ensure OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
