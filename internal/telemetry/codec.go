package telemetry

import "encoding/binary"

// Record format (binary, little-endian, no padding):
//   - TimestampNs (8 bytes, unsigned)
//   - RSSIdBm (4 bytes, signed)
//   - TxOK (4 bytes, unsigned)
//   - TxRetry (4 bytes, unsigned)
//   - TxFail (4 bytes, unsigned)
//
// There is no framing, no checksum, no version byte. The length IS the
// validity check: anything that is not exactly RecordSize bytes is discarded.

// RecordSize is the exact wire size of an encoded Sample.
const RecordSize = 24

// Decode interprets data as one wire record.
// It returns ok=false for any input that is not exactly RecordSize bytes;
// the caller treats that as "ignore this datagram", not as an error.
// A RecordSize input always decodes: the fields are fixed-width integers
// with no further validation.
func Decode(data []byte) (Sample, bool) {
	if len(data) != RecordSize {
		return Sample{}, false
	}

	return Sample{
		TimestampNs: binary.LittleEndian.Uint64(data[0:8]),
		RSSIdBm:     int32(binary.LittleEndian.Uint32(data[8:12])),
		TxOK:        binary.LittleEndian.Uint32(data[12:16]),
		TxRetry:     binary.LittleEndian.Uint32(data[16:20]),
		TxFail:      binary.LittleEndian.Uint32(data[20:24]),
	}, true
}

// Encode returns the wire record for s.
func Encode(s Sample) []byte {
	return AppendEncode(make([]byte, 0, RecordSize), s)
}

// AppendEncode appends the wire record for s to dst and returns the
// extended buffer. Decode(Encode(s)) is the identity, and re-encoding a
// decoded record reproduces the input bytes exactly.
func AppendEncode(dst []byte, s Sample) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, s.TimestampNs)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(s.RSSIdBm))
	dst = binary.LittleEndian.AppendUint32(dst, s.TxOK)
	dst = binary.LittleEndian.AppendUint32(dst, s.TxRetry)
	dst = binary.LittleEndian.AppendUint32(dst, s.TxFail)
	return dst
}
