package capture

import (
	"errors"
	"sync/atomic"
)

// ErrRingSize is returned when a ring is constructed with fewer than two
// slots.
var ErrRingSize = errors.New("ring capacity must be at least 2")

// Ring is a fixed-capacity single-producer/single-consumer queue of
// Records. Push and Pop never block and are wait-free; one slot is kept
// empty so a full ring is distinguishable from an empty one, leaving
// capacity-1 usable slots.
//
// The published indices are the only synchronization between the two
// sides: slot contents are written before the write index advances and
// read before the read index advances, so neither side ever observes a
// half-written slot. At most one goroutine may call Push and at most one
// may call Pop concurrently.
type Ring struct {
	slots    []Record
	capacity uint64

	// write is the next slot the producer will fill, read the next slot
	// the consumer will drain.
	write atomic.Uint64
	read  atomic.Uint64
}

// NewRing allocates a ring with the given number of slots. Allocation
// failure of the slot array is the only fatal condition in this package,
// surfaced by the runtime at make().
func NewRing(capacity int) (*Ring, error) {
	if capacity < 2 {
		return nil, ErrRingSize
	}
	return &Ring{
		slots:    make([]Record, capacity),
		capacity: uint64(capacity),
	}, nil
}

// Push publishes one record. It reports false without modifying state
// when the ring is full; the caller decides whether to drop or apply
// back-pressure.
func (r *Ring) Push(rec Record) bool {
	w := r.write.Load()
	next := (w + 1) % r.capacity
	if next == r.read.Load() {
		return false
	}
	r.slots[w] = rec
	// The store below releases the slot contents to the consumer.
	r.write.Store(next)
	return true
}

// Pop consumes one record into out. It reports false when the ring is
// empty; the consumer should poll again later.
func (r *Ring) Pop(out *Record) bool {
	rd := r.read.Load()
	if rd == r.write.Load() {
		return false
	}
	*out = r.slots[rd]
	// The store below releases the slot for reuse by the producer.
	r.read.Store((rd + 1) % r.capacity)
	return true
}

// Cap returns the slot count. Usable capacity is one less.
func (r *Ring) Cap() int {
	return int(r.capacity)
}

// Len returns the number of unread records. The value is approximate
// while the other side is active.
func (r *Ring) Len() int {
	w := r.write.Load()
	rd := r.read.Load()
	return int((w + r.capacity - rd) % r.capacity)
}

// WriteIndex returns the last published producer index. External readers
// sharing the slot region poll this to detect new entries.
func (r *Ring) WriteIndex() uint64 {
	return r.write.Load()
}

// ReadIndex returns the current consumer index.
func (r *Ring) ReadIndex() uint64 {
	return r.read.Load()
}
