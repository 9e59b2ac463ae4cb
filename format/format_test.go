package format_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pktwall/pktwall/format"
	_ "github.com/pktwall/pktwall/format/binary"
	_ "github.com/pktwall/pktwall/format/json"
	_ "github.com/pktwall/pktwall/format/text"
)

type testEvent struct {
	Flow uint64 `json:"flow"`
}

func (e *testEvent) Key() []byte {
	return []byte("k")
}

func (e *testEvent) String() string {
	return "flow=1"
}

func (e *testEvent) MarshalBinary() ([]byte, error) {
	return []byte{0x01}, nil
}

func TestRegisteredFormats(t *testing.T) {
	names := format.GetFormats()
	assert.Contains(t, names, "json")
	assert.Contains(t, names, "text")
	assert.Contains(t, names, "bin")
}

func TestFindFormatUnknown(t *testing.T) {
	_, err := format.FindFormat("nope")
	assert.ErrorIs(t, err, format.ErrFormat)
}

func TestJSONFormat(t *testing.T) {
	f, err := format.FindFormat("json")
	require.NoError(t, err)

	key, data, err := f.Format(&testEvent{Flow: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), key)

	var out testEvent
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, uint64(1), out.Flow)
}

func TestTextFormat(t *testing.T) {
	f, err := format.FindFormat("text")
	require.NoError(t, err)

	key, data, err := f.Format(&testEvent{Flow: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), key)
	assert.Equal(t, "flow=1", string(data))
}

func TestBinaryFormat(t *testing.T) {
	f, err := format.FindFormat("bin")
	require.NoError(t, err)

	_, data, err := f.Format(&testEvent{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, data)

	_, _, err = f.Format(struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrFormat)
}
