package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBinaryLayout(t *testing.T) {
	rec := Record{
		Timestamp: 1.5,
		Length:    1500,
		FlowID:    0x0102030405060708,
		Alert:     true,
	}

	data, err := rec.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, RecordSize)

	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xf8, 0x3f}, data[0:8])
	assert.Equal(t, []byte{0xdc, 0x05, 0, 0}, data[8:12])
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, data[12:20])
	assert.Equal(t, byte(1), data[20])
	assert.Equal(t, []byte{0, 0, 0}, data[21:24])

	var out Record
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, rec, out)
}

func TestRecordUnmarshalShort(t *testing.T) {
	var rec Record
	assert.Error(t, rec.UnmarshalBinary(make([]byte, RecordSize-1)))
}
