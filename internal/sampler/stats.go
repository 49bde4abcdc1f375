package sampler

import "sync/atomic"

// =============================================================================
// Loop Statistics
// =============================================================================

// Stats tracks runtime counters for the sampler loop.
//
// Stats is safe for concurrent use. Counters use atomic operations so the
// loop can update them while the shutdown path and tests read them.
type Stats struct {
	// Ticks counts poll cycles entered.
	Ticks atomic.Int64

	// Datagrams counts datagrams read off the endpoint.
	Datagrams atomic.Int64

	// Malformed counts wrong-length datagrams discarded without display
	// effect.
	Malformed atomic.Int64

	// ReceiveErrors counts transient receive failures absorbed by the loop.
	ReceiveErrors atomic.Int64

	// Updates counts status texts pushed to the display sink.
	Updates atomic.Int64
}

// GetStats returns current counters.
//
// Returns: ticks, datagrams, malformed, receive errors, updates.
func (s *Stats) GetStats() (ticks, datagrams, malformed, receiveErrors, updates int64) {
	return s.Ticks.Load(),
		s.Datagrams.Load(),
		s.Malformed.Load(),
		s.ReceiveErrors.Load(),
		s.Updates.Load()
}
