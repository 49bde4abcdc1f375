// Package probe implements the producer side of the telemetry link.
//
// This file defines the heartbeat loop that drives readings.
package probe

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/xtxerr/qosmon/internal/logging"
	"github.com/xtxerr/qosmon/internal/telemetry"
)

var log = logging.Component("probe")

// Config holds heartbeat configuration.
type Config struct {
	// Source produces station readings (required).
	Source StationSource

	// Emitter sends encoded records (required).
	Emitter *Emitter

	// Interval between readings. A non-positive interval emits a single
	// reading and returns.
	Interval time.Duration
}

// Stats tracks heartbeat runtime counters.
//
// Stats is safe for concurrent use.
type Stats struct {
	Readings   atomic.Int64
	ReadErrors atomic.Int64
	Sent       atomic.Int64
	SendErrors atomic.Int64
}

// GetStats returns current counters.
//
// Returns: readings, read errors, records sent, send errors.
func (s *Stats) GetStats() (readings, readErrors, sent, sendErrors int64) {
	return s.Readings.Load(), s.ReadErrors.Load(), s.Sent.Load(), s.SendErrors.Load()
}

// =============================================================================
// Heartbeat Loop
// =============================================================================

// Heartbeat takes one station reading per interval and emits it as a
// telemetry record stamped with the realtime clock.
type Heartbeat struct {
	source   StationSource
	emitter  *Emitter
	interval time.Duration

	stats Stats
}

// New creates a heartbeat loop.
func New(cfg *Config) *Heartbeat {
	return &Heartbeat{
		source:   cfg.Source,
		emitter:  cfg.Emitter,
		interval: cfg.Interval,
	}
}

// Run emits one reading immediately, then one per interval until ctx is
// done. With a non-positive interval it returns after the first reading.
func (h *Heartbeat) Run(ctx context.Context) error {
	h.beat()

	if h.interval <= 0 {
		log.Info("single reading emitted")
		return nil
	}

	log.Info("heartbeat started", "interval", h.interval, "socket", h.emitter.Path())

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			readings, readErrors, sent, sendErrors := h.stats.GetStats()
			log.Info("heartbeat stopped",
				"readings", readings,
				"read_errors", readErrors,
				"sent", sent,
				"send_errors", sendErrors)
			return nil
		case <-ticker.C:
			h.beat()
		}
	}
}

// beat takes one reading and emits it. Read and send failures are absorbed;
// the probe never dies because the station dropped off or the display is
// away.
func (h *Heartbeat) beat() {
	reading, err := h.source.ReadStats()
	if err != nil {
		h.stats.ReadErrors.Add(1)
		log.Warn("station read failed", "error", err)
		return
	}
	h.stats.Readings.Add(1)

	sample := telemetry.Sample{
		TimestampNs: uint64(time.Now().UnixNano()),
		RSSIdBm:     reading.RSSIdBm,
		TxOK:        reading.TxOK,
		TxRetry:     reading.TxRetry,
		TxFail:      reading.TxFail,
	}

	if err := h.emitter.Send(sample); err != nil {
		h.stats.SendErrors.Add(1)
		log.Warn("send failed", "error", err)
		return
	}
	h.stats.Sent.Add(1)
}

// Stats returns the loop's runtime counters.
func (h *Heartbeat) Stats() *Stats {
	return &h.stats
}
