package telemetry

// Metrics holds the values derived from a Sample for display.
// Metrics are recomputed for every sample and never stored.
type Metrics struct {
	// SignalPercent is the RSSI mapped to 0..100 via 2*(rssi+100), clamped.
	// The clamp is cosmetic range limiting, not input validation: the RSSI
	// itself is accepted as-is.
	SignalPercent int

	// EfficiencyPercent is the share of accounted transmission attempts
	// that succeeded: 100*ok/(ok+retry+fail). Defined as 0.0 for an
	// all-idle report (sum of counters is zero).
	EfficiencyPercent float64
}

// Derive computes the display metrics for s.
// Pure function, no failure modes: the division-by-zero case is defined.
func Derive(s Sample) Metrics {
	pct := 2 * (int(s.RSSIdBm) + 100)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	// Sum in uint64: the three counters can individually approach the
	// uint32 limit.
	total := uint64(s.TxOK) + uint64(s.TxRetry) + uint64(s.TxFail)

	var eff float64
	if total > 0 {
		eff = 100 * float64(s.TxOK) / float64(total)
	}

	return Metrics{
		SignalPercent:     pct,
		EfficiencyPercent: eff,
	}
}
