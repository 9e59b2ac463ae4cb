package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDriverWritesEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.log")
	d := &FileDriver{path: path, sep: "\n"}
	require.NoError(t, d.Init())

	require.NoError(t, d.Send([]byte("42"), []byte(`{"flow_id":42,"action":"drop"}`)))
	require.NoError(t, d.Send([]byte("7"), []byte(`{"flow_id":7,"action":"pass"}`)))
	require.NoError(t, d.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"{\"flow_id\":42,\"action\":\"drop\"}\n{\"flow_id\":7,\"action\":\"pass\"}\n",
		string(data))
}

func TestFileDriverAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.log")

	for _, line := range []string{"first", "second"} {
		d := &FileDriver{path: path, sep: "\n"}
		require.NoError(t, d.Init())
		require.NoError(t, d.Send(nil, []byte(line)))
		require.NoError(t, d.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}
