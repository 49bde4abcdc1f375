package sampler

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xtxerr/qosmon/internal/endpoint"
	"github.com/xtxerr/qosmon/internal/telemetry"
	"github.com/xtxerr/qosmon/internal/testutil"
)

// recordingSink captures every update pushed by the loop.
type recordingSink struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordingSink) Update(text string) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.texts)
}

func (s *recordingSink) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

func openEndpoint(t *testing.T) *endpoint.Endpoint {
	t.Helper()

	ep, err := endpoint.Open(filepath.Join(t.TempDir(), "qosmon.sock"), 0)
	if err != nil {
		t.Fatalf("open endpoint: %v", err)
	}
	t.Cleanup(func() { ep.Close() })
	return ep
}

// startLoop runs a loop with a short test interval until the returned stop
// function is called.
func startLoop(t *testing.T, ep *endpoint.Endpoint, sink *recordingSink) (*Loop, func()) {
	t.Helper()

	loop := New(&Config{Endpoint: ep, Sink: sink, Interval: 2 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()

	stop := func() {
		cancel()
		err := testutil.WithTimeout(2*time.Second, func() error {
			return <-done
		})
		if err != nil {
			t.Fatalf("loop did not stop cleanly: %v", err)
		}
	}
	return loop, stop
}

func send(t *testing.T, path string, payload []byte) {
	t.Helper()

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name   string
		sample telemetry.Sample
		want   string
	}{
		{
			name:   "reference",
			sample: telemetry.Sample{TimestampNs: 1_000_000_000, RSSIdBm: -60, TxOK: 90, TxRetry: 8, TxFail: 2},
			want:   "Time: 1.000 s\nRSSI: -60 dBm   (80 %)\nOK: 90   Retry: 8   Fail: 2\nEff: 90.00 %",
		},
		{
			name:   "idle",
			sample: telemetry.Sample{},
			want:   "Time: 0.000 s\nRSSI: 0 dBm   (100 %)\nOK: 0   Retry: 0   Fail: 0\nEff: 0.00 %",
		},
		{
			name:   "weak signal",
			sample: telemetry.Sample{TimestampNs: 2_500_000_000, RSSIdBm: -101, TxOK: 80, TxRetry: 15, TxFail: 5},
			want:   "Time: 2.500 s\nRSSI: -101 dBm   (0 %)\nOK: 80   Retry: 15   Fail: 5\nEff: 80.00 %",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatStatus(tt.sample, telemetry.Derive(tt.sample))
			if got != tt.want {
				t.Errorf("FormatStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoopRendersValidDatagram(t *testing.T) {
	ep := openEndpoint(t)
	sink := &recordingSink{}
	loop, stop := startLoop(t, ep, sink)
	defer stop()

	sample := telemetry.Sample{TimestampNs: 1_000_000_000, RSSIdBm: -60, TxOK: 90, TxRetry: 8, TxFail: 2}
	send(t, ep.Path(), telemetry.Encode(sample))

	if err := testutil.Eventually(2*time.Second, time.Millisecond, func() bool {
		return sink.count() == 1
	}); err != nil {
		t.Fatalf("no display update: %v", err)
	}

	want := "Time: 1.000 s\nRSSI: -60 dBm   (80 %)\nOK: 90   Retry: 8   Fail: 2\nEff: 90.00 %"
	if got := sink.last(); got != want {
		t.Errorf("rendered %q, want %q", got, want)
	}
	if got := loop.LastText(); got != want {
		t.Errorf("LastText = %q, want %q", got, want)
	}

	_, datagrams, malformed, _, updates := loop.Stats().GetStats()
	if datagrams != 1 || malformed != 0 || updates != 1 {
		t.Errorf("stats datagrams=%d malformed=%d updates=%d, want 1/0/1",
			datagrams, malformed, updates)
	}
}

func TestLoopDiscardsGarbage(t *testing.T) {
	ep := openEndpoint(t)
	sink := &recordingSink{}
	loop, stop := startLoop(t, ep, sink)
	defer stop()

	// 30 bytes: too long for a record, shorter than the receive buffer.
	garbage := make([]byte, 30)
	for i := range garbage {
		garbage[i] = 0xEE
	}
	send(t, ep.Path(), garbage)

	if err := testutil.Eventually(2*time.Second, time.Millisecond, func() bool {
		return loop.Stats().Malformed.Load() == 1
	}); err != nil {
		t.Fatalf("garbage never discarded: %v", err)
	}
	if sink.count() != 0 {
		t.Errorf("garbage datagram produced %d display updates", sink.count())
	}

	// The loop keeps running and still renders the next valid sample.
	sample := telemetry.Sample{TimestampNs: 3_000_000_000, RSSIdBm: -75, TxOK: 50, TxRetry: 50, TxFail: 0}
	send(t, ep.Path(), telemetry.Encode(sample))

	if err := testutil.Eventually(2*time.Second, time.Millisecond, func() bool {
		return sink.count() == 1
	}); err != nil {
		t.Fatalf("no recovery after garbage: %v", err)
	}

	want := "Time: 3.000 s\nRSSI: -75 dBm   (50 %)\nOK: 50   Retry: 50   Fail: 0\nEff: 50.00 %"
	if got := sink.last(); got != want {
		t.Errorf("rendered %q, want %q", got, want)
	}
}

func TestLoopDrainsBacklogOnePerTick(t *testing.T) {
	ep := openEndpoint(t)
	sink := &recordingSink{}
	loop, stop := startLoop(t, ep, sink)
	defer stop()

	for i := uint32(1); i <= 3; i++ {
		send(t, ep.Path(), telemetry.Encode(telemetry.Sample{
			TimestampNs: uint64(i) * 1_000_000_000,
			RSSIdBm:     -60,
			TxOK:        i,
		}))
	}

	if err := testutil.Eventually(2*time.Second, time.Millisecond, func() bool {
		return sink.count() == 3
	}); err != nil {
		t.Fatalf("backlog not drained: %v", err)
	}

	// Datagrams render in arrival order; the newest ends up displayed.
	want := "Time: 3.000 s\nRSSI: -60 dBm   (80 %)\nOK: 3   Retry: 0   Fail: 0\nEff: 100.00 %"
	if got := loop.LastText(); got != want {
		t.Errorf("LastText = %q, want %q", got, want)
	}

	// One receive per tick: at least as many ticks as datagrams.
	ticks, datagrams, _, _, _ := loop.Stats().GetStats()
	if ticks < datagrams {
		t.Errorf("ticks=%d < datagrams=%d", ticks, datagrams)
	}
}

func TestLoopAbsorbsReceiveErrors(t *testing.T) {
	ep := openEndpoint(t)
	sink := &recordingSink{}
	loop, stop := startLoop(t, ep, sink)
	defer stop()

	// Closing the endpoint under the loop turns every receive into an error.
	ep.Close()

	if err := testutil.Eventually(2*time.Second, time.Millisecond, func() bool {
		return loop.Stats().ReceiveErrors.Load() >= 2
	}); err != nil {
		t.Fatalf("receive errors not recorded: %v", err)
	}

	// Still ticking: errors are absorbed, not fatal.
	before := loop.Stats().Ticks.Load()
	if err := testutil.Eventually(2*time.Second, time.Millisecond, func() bool {
		return loop.Stats().Ticks.Load() > before
	}); err != nil {
		t.Fatalf("loop stopped ticking after receive errors: %v", err)
	}

	if sink.count() != 0 {
		t.Errorf("receive errors produced %d display updates", sink.count())
	}
}

func TestLoopIdleWithoutData(t *testing.T) {
	ep := openEndpoint(t)
	sink := &recordingSink{}
	loop, stop := startLoop(t, ep, sink)
	defer stop()

	if err := testutil.Eventually(2*time.Second, time.Millisecond, func() bool {
		return loop.Stats().Ticks.Load() >= 5
	}); err != nil {
		t.Fatalf("loop not ticking: %v", err)
	}

	if sink.count() != 0 {
		t.Errorf("idle loop produced %d display updates", sink.count())
	}
	if loop.LastText() != "" {
		t.Errorf("LastText = %q before any sample", loop.LastText())
	}
}
