package enforce

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicyConfig(t *testing.T) {
	doc := `
default_action: drop
flows:
  - flow_id: 42
    action: pass
  - flow_id: 7
    action: rate_limit
`
	config, err := LoadPolicyConfig(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, ActionDrop, config.DefaultAction)
	require.Len(t, config.Flows, 2)
	assert.Equal(t, FlowPolicy{FlowID: 42, Action: ActionPass}, config.Flows[0])
	assert.Equal(t, FlowPolicy{FlowID: 7, Action: ActionRateLimit}, config.Flows[1])
}

func TestLoadPolicyConfigBadAction(t *testing.T) {
	_, err := LoadPolicyConfig(strings.NewReader("default_action: explode\n"))
	assert.Error(t, err)
}

func TestPolicyConfigApply(t *testing.T) {
	config := &PolicyConfig{
		DefaultAction: ActionReject,
		Flows: []FlowPolicy{
			{FlowID: 1, Action: ActionDrop},
			{FlowID: 2, Action: ActionPass},
		},
	}

	e := NewFlowEnforcer(nil, ActionPass, nil)
	require.NoError(t, config.Apply(e))

	assert.Equal(t, ActionReject, e.DefaultAction())
	a, ok := e.Table().Get(1)
	assert.True(t, ok)
	assert.Equal(t, ActionDrop, a)
	assert.Equal(t, 2, e.Table().Len())
}

func TestParseActionRoundTrip(t *testing.T) {
	for _, a := range []Action{ActionPass, ActionDrop, ActionReject, ActionRateLimit} {
		parsed, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}
	_, err := ParseAction("accept")
	assert.Error(t, err)
}
