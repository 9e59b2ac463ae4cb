package enforce

import (
	"hash/fnv"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/pktwall/pktwall/capture"
	"github.com/pktwall/pktwall/metrics"
)

// KeyFunc derives a flow identity from raw packet bytes. Real 5-tuple
// parsing lives with the caller; the engine only needs an opaque digest.
type KeyFunc func(data []byte) uint64

// DefaultKeyFunc digests the leading packet bytes with FNV-1a.
func DefaultKeyFunc(data []byte) uint64 {
	h := fnv.New64a()
	n := len(data)
	if n > 64 {
		n = 64
	}
	h.Write(data[:n])
	return h.Sum64()
}

// Engine decides the fate of packets and accepts control-plane policy
// mutations. Decide must be safe to call concurrently with
// EnforceFlowPolicy and SetDefaultAction.
type Engine interface {
	// Decide classifies raw packet bytes of the given observed length.
	Decide(data []byte, length uint16) Decision
	// DecideRecord classifies a captured feature record using its
	// pre-computed flow identity.
	DecideRecord(rec capture.Record) Decision
	// EnforceFlowPolicy installs or overwrites a per-flow action.
	EnforceFlowPolicy(flow uint64, action Action) error
	// DefaultAction returns the action applied when no rule matches.
	DefaultAction() Action
	// SetDefaultAction replaces the fallback action, visible to
	// subsequent Decide calls.
	SetDefaultAction(action Action)
}

// FlowEnforcer is the standard Engine: a jumbo-frame check, then a flow
// table lookup, then the default action. It has no lifecycle; once
// constructed it is always ready to decide.
type FlowEnforcer struct {
	table         *FlowTable
	defaultAction atomic.Uint32
	key           KeyFunc
}

var _ Engine = (*FlowEnforcer)(nil)

// NewFlowEnforcer creates an engine over the given table. A nil table
// gets a fresh in-memory one, a nil key function the FNV digest.
func NewFlowEnforcer(table *FlowTable, defaultAction Action, key KeyFunc) *FlowEnforcer {
	if table == nil {
		table = NewFlowTable()
	}
	if key == nil {
		key = DefaultKeyFunc
	}
	e := &FlowEnforcer{table: table, key: key}
	e.defaultAction.Store(uint32(defaultAction))
	return e
}

// Decide classifies a packet. The jumbo check precedes the flow lookup
// unconditionally.
func (e *FlowEnforcer) Decide(data []byte, length uint16) Decision {
	if int(length) > MaxFrameSize {
		return Decision{Action: ActionDrop, RuleID: RuleJumbo}
	}
	return e.decideFlow(e.key(data))
}

// DecideRecord classifies a captured record by its flow identity.
func (e *FlowEnforcer) DecideRecord(rec capture.Record) Decision {
	if rec.Length > MaxFrameSize {
		return Decision{Action: ActionDrop, RuleID: RuleJumbo}
	}
	return e.decideFlow(rec.FlowID)
}

func (e *FlowEnforcer) decideFlow(flow uint64) Decision {
	if action, ok := e.table.Get(flow); ok {
		return Decision{Action: action, RuleID: RuleFlow}
	}
	return Decision{Action: e.DefaultAction(), RuleID: RuleDefault}
}

// EnforceFlowPolicy is the control-plane entry point for per-flow
// overrides. Safe while Decide runs concurrently.
func (e *FlowEnforcer) EnforceFlowPolicy(flow uint64, action Action) error {
	if err := e.table.Set(flow, action); err != nil {
		return err
	}
	metrics.FlowPolicies.Set(float64(e.table.Len()))
	log.WithFields(log.Fields{
		"flow_id": flow,
		"action":  action.String(),
	}).Info("flow policy enforced")
	return nil
}

// Table exposes the policy table for listing and deletion by the control
// plane.
func (e *FlowEnforcer) Table() *FlowTable {
	return e.table
}

// DefaultAction returns the current fallback action.
func (e *FlowEnforcer) DefaultAction() Action {
	return Action(e.defaultAction.Load())
}

// SetDefaultAction atomically replaces the fallback action. No ordering
// guarantee is made relative to decisions already in flight.
func (e *FlowEnforcer) SetDefaultAction(action Action) {
	e.defaultAction.Store(uint32(action))
}
