// Package capture implements the packet feature producer and the
// single-producer/single-consumer ring buffer it publishes into.
package capture

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// MaxSnapLen is the maximum number of payload bytes retained per
	// captured packet by live sources.
	MaxSnapLen = 2048

	// RecordSize is the encoded size of one ring slot in bytes. The
	// layout is the wire contract with any external reader sharing the
	// buffer region and must not change without coordination.
	RecordSize = 24
)

// Record holds the per-packet features placed into the ring buffer.
// A Record is immutable once published; the slot it occupies is only
// reused after the consumer has advanced past it.
type Record struct {
	// Timestamp is seconds since the Unix epoch, non-decreasing in
	// production order.
	Timestamp float64 `json:"timestamp"`
	// Length is the observed packet length in bytes, which may exceed
	// the snapped payload length.
	Length uint32 `json:"length"`
	// FlowID is an opaque digest of the packet's flow tuple.
	FlowID uint64 `json:"flow_id"`
	// Alert marks packets whose attributes met the source's alerting
	// condition.
	Alert bool `json:"alert"`
}

// AppendBinary encodes the record in its fixed slot layout:
// timestamp (8, IEEE 754), length (4), flow id (8), alert (1), pad (3),
// all little-endian.
func (r *Record) AppendBinary(dst []byte) []byte {
	var buf [RecordSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(r.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], r.Length)
	binary.LittleEndian.PutUint64(buf[12:20], r.FlowID)
	if r.Alert {
		buf[20] = 1
	}
	return append(dst, buf[:]...)
}

// MarshalBinary implements encoding.BinaryMarshaler using the slot layout.
func (r *Record) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(nil), nil
}

// UnmarshalBinary decodes a record from its fixed slot layout.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) < RecordSize {
		return fmt.Errorf("record too short: %d bytes", len(data))
	}
	r.Timestamp = math.Float64frombits(binary.LittleEndian.Uint64(data[0:8]))
	r.Length = binary.LittleEndian.Uint32(data[8:12])
	r.FlowID = binary.LittleEndian.Uint64(data[12:20])
	r.Alert = data[20] != 0
	return nil
}
