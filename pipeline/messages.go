package pipeline

import (
	"fmt"
	"strconv"

	"github.com/pktwall/pktwall/capture"
	"github.com/pktwall/pktwall/enforce"
)

// DecisionEvent is the audit record emitted for each inspected packet.
type DecisionEvent struct {
	Timestamp float64        `json:"timestamp"`
	FlowID    uint64         `json:"flow_id"`
	Length    uint32         `json:"length"`
	Alert     bool           `json:"alert"`
	Action    enforce.Action `json:"action"`
	RuleID    string         `json:"rule_id"`
}

// NewDecisionEvent combines a captured record with its decision.
func NewDecisionEvent(rec capture.Record, d enforce.Decision) *DecisionEvent {
	return &DecisionEvent{
		Timestamp: rec.Timestamp,
		FlowID:    rec.FlowID,
		Length:    rec.Length,
		Alert:     rec.Alert,
		Action:    d.Action,
		RuleID:    d.RuleID,
	}
}

// Key returns the flow identity, used for transport partitioning.
func (e *DecisionEvent) Key() []byte {
	return []byte(strconv.FormatUint(e.FlowID, 10))
}

func (e *DecisionEvent) String() string {
	return fmt.Sprintf("ts=%.6f flow=%d len=%d alert=%t action=%s rule=%s",
		e.Timestamp, e.FlowID, e.Length, e.Alert, e.Action, e.RuleID)
}

// MarshalBinary encodes the record slot layout followed by one action
// byte, for readers consuming the raw wire contract.
func (e *DecisionEvent) MarshalBinary() ([]byte, error) {
	rec := capture.Record{
		Timestamp: e.Timestamp,
		Length:    e.Length,
		FlowID:    e.FlowID,
		Alert:     e.Alert,
	}
	return append(rec.AppendBinary(nil), byte(e.Action)), nil
}
