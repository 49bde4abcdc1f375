package telemetry

import "time"

// Sample is a single link-quality report from the producer.
// It is decoded fresh from each datagram and lives for one poll cycle only;
// nothing in the system retains samples across cycles.
type Sample struct {
	// TimestampNs is nanoseconds since the producer's epoch (typically the
	// realtime clock, but producer-defined and passed through unvalidated).
	TimestampNs uint64

	// RSSIdBm is the received signal strength in dBm. Typically -100..0,
	// but out-of-range values are passed through; only the derived signal
	// percentage is clamped.
	RSSIdBm int32

	// Transmission counters accumulated over a producer-defined window.
	TxOK    uint32
	TxRetry uint32
	TxFail  uint32
}

// Elapsed returns the producer timestamp as a duration since its epoch.
func (s Sample) Elapsed() time.Duration {
	return time.Duration(s.TimestampNs)
}

// ElapsedSeconds returns the producer timestamp in seconds, as shown on the
// display with millisecond precision.
func (s Sample) ElapsedSeconds() float64 {
	return float64(s.TimestampNs) / 1e9
}
