// Package sampler drives the poll/decode/display cycle of the display
// daemon.
//
// On each tick the loop asks the endpoint for at most one datagram, decodes
// it if present, computes derived metrics, and pushes a formatted status
// text to the display sink. Absence of data is the expected majority
// outcome, not an error. The loop owns no state across cycles beyond the
// last rendered text; every valid sample fully replaces the previous one.
package sampler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xtxerr/qosmon/config"
	"github.com/xtxerr/qosmon/internal/display"
	"github.com/xtxerr/qosmon/internal/endpoint"
	"github.com/xtxerr/qosmon/internal/logging"
	"github.com/xtxerr/qosmon/internal/telemetry"
)

var log = logging.Component("sampler")

// =============================================================================
// Configuration
// =============================================================================

// Config holds sampler loop configuration.
type Config struct {
	// Endpoint is the bound datagram endpoint to poll (required).
	Endpoint *endpoint.Endpoint

	// Sink receives formatted status updates (required).
	Sink display.Sink

	// Interval between poll cycles. Values <= 0 use
	// config.DefaultPollInterval.
	Interval time.Duration
}

// =============================================================================
// Loop
// =============================================================================

// Loop polls the endpoint on a fixed cadence and renders samples to the
// sink. Exactly one receive attempt happens per tick; a backlog of queued
// datagrams drains at one per tick.
type Loop struct {
	ep       *endpoint.Endpoint
	sink     display.Sink
	interval time.Duration

	stats Stats

	mu       sync.RWMutex
	lastText string
}

// New creates a sampler loop.
func New(cfg *Config) *Loop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}

	return &Loop{
		ep:       cfg.Endpoint,
		sink:     cfg.Sink,
		interval: interval,
	}
}

// Run drives poll cycles until ctx is done, then returns nil.
//
// The timer is re-armed only after a cycle completes, so a slow sink
// stretches the cadence instead of letting cycles stack up. A cycle is
// short and never cancelled midway.
func (l *Loop) Run(ctx context.Context) error {
	log.Info("sampler started", "path", l.ep.Path(), "interval", l.interval)

	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			ticks, datagrams, malformed, receiveErrors, updates := l.stats.GetStats()
			log.Info("sampler stopped",
				"ticks", ticks,
				"datagrams", datagrams,
				"malformed", malformed,
				"receive_errors", receiveErrors,
				"updates", updates)
			return nil
		case <-timer.C:
			l.cycle()
			timer.Reset(l.interval)
		}
	}
}

// cycle runs one poll: at most one receive attempt, then decode, derive,
// render. Every failure past this point is absorbed; the display keeps
// running.
func (l *Loop) cycle() {
	l.stats.Ticks.Add(1)

	data, err := l.ep.TryReceive()
	if err != nil {
		l.stats.ReceiveErrors.Add(1)
		log.Warn("receive failed", "error", err)
		return
	}
	if data == nil {
		// Empty queue, the steady state.
		return
	}

	l.stats.Datagrams.Add(1)

	sample, ok := telemetry.Decode(data)
	if !ok {
		l.stats.Malformed.Add(1)
		log.Debug("discarded datagram", "length", len(data))
		return
	}

	text := FormatStatus(sample, telemetry.Derive(sample))
	l.sink.Update(text)
	l.stats.Updates.Add(1)

	l.mu.Lock()
	l.lastText = text
	l.mu.Unlock()
}

// LastText returns the most recently rendered status text, or "" before the
// first valid sample.
func (l *Loop) LastText() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastText
}

// Stats returns the loop's runtime counters.
func (l *Loop) Stats() *Stats {
	return &l.stats
}

// =============================================================================
// Status Formatting
// =============================================================================

// FormatStatus renders a sample and its derived metrics as the multi-line
// status text pushed to the display sink: elapsed seconds, RSSI with signal
// percentage, transmit counters, and efficiency.
func FormatStatus(s telemetry.Sample, m telemetry.Metrics) string {
	return fmt.Sprintf(
		"Time: %.3f s\nRSSI: %d dBm   (%d %%)\nOK: %d   Retry: %d   Fail: %d\nEff: %.2f %%",
		s.ElapsedSeconds(),
		s.RSSIdBm,
		m.SignalPercent,
		s.TxOK,
		s.TxRetry,
		s.TxFail,
		m.EfficiencyPercent,
	)
}
