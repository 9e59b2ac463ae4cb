package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingSize(t *testing.T) {
	_, err := NewRing(1)
	assert.ErrorIs(t, err, ErrRingSize)

	r, err := NewRing(2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Cap())
}

func TestRingFIFO(t *testing.T) {
	r, err := NewRing(8)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.True(t, r.Push(Record{FlowID: uint64(i)}))
	}
	assert.Equal(t, 5, r.Len())

	var rec Record
	for i := 1; i <= 5; i++ {
		require.True(t, r.Pop(&rec))
		assert.Equal(t, uint64(i), rec.FlowID)
	}
	assert.False(t, r.Pop(&rec))
	assert.Equal(t, 0, r.Len())
}

func TestRingCapacity(t *testing.T) {
	const capacity = 8
	r, err := NewRing(capacity)
	require.NoError(t, err)

	// one slot stays empty to disambiguate full from empty
	for i := 0; i < capacity-1; i++ {
		require.True(t, r.Push(Record{FlowID: uint64(i)}), "push %d", i)
	}
	assert.False(t, r.Push(Record{FlowID: 99}))

	// prior entries are all still retrievable in order
	var rec Record
	for i := 0; i < capacity-1; i++ {
		require.True(t, r.Pop(&rec))
		assert.Equal(t, uint64(i), rec.FlowID)
	}
}

func TestRingFullThenDrain(t *testing.T) {
	r, err := NewRing(4)
	require.NoError(t, err)

	require.True(t, r.Push(Record{FlowID: 1}))
	require.True(t, r.Push(Record{FlowID: 2}))
	require.True(t, r.Push(Record{FlowID: 3}))
	require.False(t, r.Push(Record{FlowID: 4}))

	var rec Record
	require.True(t, r.Pop(&rec))
	assert.Equal(t, uint64(1), rec.FlowID)

	require.True(t, r.Push(Record{FlowID: 4}))

	for _, want := range []uint64{2, 3, 4} {
		require.True(t, r.Pop(&rec))
		assert.Equal(t, want, rec.FlowID)
	}
	assert.False(t, r.Pop(&rec))
}

func TestRingConcurrentWrapAround(t *testing.T) {
	const n = 100000
	r, err := NewRing(64)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		var rec Record
		for i := uint64(0); i < n; {
			if !r.Pop(&rec) {
				continue
			}
			if rec.FlowID != i {
				done <- assert.AnError
				return
			}
			i++
		}
		done <- nil
	}()

	for i := uint64(0); i < n; {
		if r.Push(Record{FlowID: i}) {
			i++
		}
	}

	require.NoError(t, <-done, "records lost, duplicated, or reordered")
}

func TestRingIndices(t *testing.T) {
	r, err := NewRing(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), r.WriteIndex())
	assert.Equal(t, uint64(0), r.ReadIndex())

	require.True(t, r.Push(Record{FlowID: 1}))
	assert.Equal(t, uint64(1), r.WriteIndex())

	var rec Record
	require.True(t, r.Pop(&rec))
	assert.Equal(t, uint64(1), r.ReadIndex())

	// indices wrap modulo capacity
	for i := 0; i < 6; i++ {
		require.True(t, r.Push(Record{}))
		require.True(t, r.Pop(&rec))
	}
	assert.Equal(t, uint64(3), r.WriteIndex())
	assert.Equal(t, uint64(3), r.ReadIndex())
}
