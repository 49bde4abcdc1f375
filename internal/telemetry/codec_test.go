package telemetry

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestDecodeRejectsWrongLength(t *testing.T) {
	lengths := []int{0, 1, 8, 16, 23, 25, 30, 48, 1024}

	for _, n := range lengths {
		data := make([]byte, n)
		for i := range data {
			data[i] = 0xAB
		}

		s, ok := Decode(data)
		if ok {
			t.Errorf("Decode accepted %d bytes, want rejection", n)
		}
		if s != (Sample{}) {
			t.Errorf("Decode(%d bytes) returned non-zero sample %+v", n, s)
		}
	}
}

func TestDecodeKnownRecord(t *testing.T) {
	// The reference record: ts=1s, rssi=-60 dBm, 90 ok, 8 retries, 2 failures.
	rssi := int32(-60)
	data := make([]byte, RecordSize)
	binary.LittleEndian.PutUint64(data[0:8], 1_000_000_000)
	binary.LittleEndian.PutUint32(data[8:12], uint32(rssi))
	binary.LittleEndian.PutUint32(data[12:16], 90)
	binary.LittleEndian.PutUint32(data[16:20], 8)
	binary.LittleEndian.PutUint32(data[20:24], 2)

	s, ok := Decode(data)
	if !ok {
		t.Fatal("Decode rejected a valid 24-byte record")
	}

	want := Sample{TimestampNs: 1_000_000_000, RSSIdBm: -60, TxOK: 90, TxRetry: 8, TxFail: 2}
	if s != want {
		t.Errorf("Decode = %+v, want %+v", s, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
	}{
		{
			name:   "zero",
			sample: Sample{},
		},
		{
			name:   "typical",
			sample: Sample{TimestampNs: 1_000_000_000, RSSIdBm: -60, TxOK: 90, TxRetry: 8, TxFail: 2},
		},
		{
			name:   "negative rssi extremes",
			sample: Sample{TimestampNs: 42, RSSIdBm: math.MinInt32, TxOK: 1, TxRetry: 2, TxFail: 3},
		},
		{
			name:   "positive rssi",
			sample: Sample{TimestampNs: 42, RSSIdBm: math.MaxInt32, TxOK: 1, TxRetry: 2, TxFail: 3},
		},
		{
			name: "max counters",
			sample: Sample{
				TimestampNs: math.MaxUint64,
				RSSIdBm:     -1,
				TxOK:        math.MaxUint32,
				TxRetry:     math.MaxUint32,
				TxFail:      math.MaxUint32,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Encode(tt.sample)
			if len(data) != RecordSize {
				t.Fatalf("Encode produced %d bytes, want %d", len(data), RecordSize)
			}

			decoded, ok := Decode(data)
			if !ok {
				t.Fatal("Decode rejected encoded record")
			}
			if decoded != tt.sample {
				t.Errorf("round trip = %+v, want %+v", decoded, tt.sample)
			}

			// Re-encoding the decoded record must reproduce the bytes exactly.
			again := Encode(decoded)
			if !bytes.Equal(again, data) {
				t.Errorf("re-encode = %x, want %x", again, data)
			}
		})
	}
}

func TestDecodeReencodeArbitraryBytes(t *testing.T) {
	// Any 24-byte buffer decodes, and re-encoding reproduces it bit for bit.
	data := make([]byte, RecordSize)
	for i := range data {
		data[i] = byte(i*37 + 11)
	}

	s, ok := Decode(data)
	if !ok {
		t.Fatal("Decode rejected a 24-byte buffer")
	}

	if got := Encode(s); !bytes.Equal(got, data) {
		t.Errorf("re-encode = %x, want %x", got, data)
	}
}

func TestAppendEncodePreservesPrefix(t *testing.T) {
	prefix := []byte{0xDE, 0xAD}
	s := Sample{TimestampNs: 7, RSSIdBm: -42, TxOK: 1, TxRetry: 2, TxFail: 3}

	buf := AppendEncode(prefix, s)
	if len(buf) != len(prefix)+RecordSize {
		t.Fatalf("AppendEncode length = %d, want %d", len(buf), len(prefix)+RecordSize)
	}
	if buf[0] != 0xDE || buf[1] != 0xAD {
		t.Error("AppendEncode clobbered the prefix")
	}

	decoded, ok := Decode(buf[2:])
	if !ok || decoded != s {
		t.Errorf("decoded suffix = %+v (ok=%v), want %+v", decoded, ok, s)
	}
}
