// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64

	// Trading metrics
	TradesExecuted int64
	TradesRejected int64

	// Provider metrics
	ProviderRequests   int64
	ProviderErrors     int64
	ProviderLatencySum int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	StartTime    time.Time
	lastTickTime time.Time
	mu           sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.lastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordTrade records a buy or sell attempt.
func (c *Collector) RecordTrade(filled bool) {
	if filled {
		atomic.AddInt64(&c.TradesExecuted, 1)
	} else {
		atomic.AddInt64(&c.TradesRejected, 1)
	}
}

// RecordProviderCall records an AI provider round trip.
func (c *Collector) RecordProviderCall(latency time.Duration, err error) {
	atomic.AddInt64(&c.ProviderRequests, 1)
	atomic.AddInt64(&c.ProviderLatencySum, int64(latency))
	if err != nil {
		atomic.AddInt64(&c.ProviderErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	lastTick := c.lastTickTime
	c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	providerReqs := atomic.LoadInt64(&c.ProviderRequests)

	avgTickNs := int64(0)
	if tickCount > 0 {
		avgTickNs = atomic.LoadInt64(&c.TickLatencySum) / tickCount
	}
	avgProviderNs := int64(0)
	if providerReqs > 0 {
		avgProviderNs = atomic.LoadInt64(&c.ProviderLatencySum) / providerReqs
	}

	return map[string]interface{}{
		"uptime_seconds":        time.Since(c.StartTime).Seconds(),
		"tick_count":            tickCount,
		"tick_latency_avg_us":   avgTickNs / 1000,
		"tick_latency_max_us":   atomic.LoadInt64(&c.TickLatencyMax) / 1000,
		"last_tick_time":        lastTick,
		"trades_executed":       atomic.LoadInt64(&c.TradesExecuted),
		"trades_rejected":       atomic.LoadInt64(&c.TradesRejected),
		"provider_requests":     providerReqs,
		"provider_errors":       atomic.LoadInt64(&c.ProviderErrors),
		"provider_avg_ms":       avgProviderNs / int64(time.Millisecond),
		"ws_connections_active": atomic.LoadInt64(&c.WSConnectionsActive),
		"ws_messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
		"ws_messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
		"ws_errors":             atomic.LoadInt64(&c.WSErrors),
	}
}

// Handler serves the metrics snapshot as JSON.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	}
}
