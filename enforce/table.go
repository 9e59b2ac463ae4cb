package enforce

import (
	"github.com/pktwall/pktwall/state"
)

// FlowTable maps flow identities to enforced actions. It is mutated only
// through the engine's control-plane interface and read on every
// decision; the backing state store provides the mutual exclusion, so a
// lookup racing an update observes either the old or the new action,
// never a torn value.
type FlowTable struct {
	st state.State[uint64, Action]
}

// NewFlowTable creates an in-memory flow table.
func NewFlowTable() *FlowTable {
	st, _ := state.New[uint64, Action]("memory://")
	return &FlowTable{st: st}
}

// NewFlowTableWithState creates a flow table over an explicit state
// store, for persistence (badger) or sharing across agents (redis).
func NewFlowTableWithState(st state.State[uint64, Action]) *FlowTable {
	return &FlowTable{st: st}
}

// Set installs or overwrites the action for a flow.
func (t *FlowTable) Set(flow uint64, action Action) error {
	return t.st.Add(flow, action)
}

// Get returns the enforced action for a flow, if any.
func (t *FlowTable) Get(flow uint64) (Action, bool) {
	a, err := t.st.Get(flow)
	if err != nil {
		return ActionPass, false
	}
	return a, true
}

// Delete removes the override for a flow. Deleting an absent flow is a
// no-op.
func (t *FlowTable) Delete(flow uint64) error {
	return t.st.Delete(flow)
}

// Items returns a copy of all installed overrides.
func (t *FlowTable) Items() (map[uint64]Action, error) {
	return t.st.Items()
}

// Len returns the number of installed overrides.
func (t *FlowTable) Len() int {
	return t.st.Len()
}

// Close releases the backing store.
func (t *FlowTable) Close() error {
	return t.st.Close()
}
