// Package enforce implements the packet decision engine and its
// control-plane flow policy table.
package enforce

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Action is the fate applied to a packet or flow.
type Action uint8

const (
	// ActionPass lets the packet proceed.
	ActionPass Action = iota
	// ActionDrop discards the packet silently.
	ActionDrop
	// ActionReject discards the packet and notifies the sender.
	ActionReject
	// ActionRateLimit throttles the flow.
	ActionRateLimit
)

// MaxFrameSize is the link-layer payload bound; anything larger is
// classified as malformed.
const MaxFrameSize = 1500

// Rule identifiers reported in decisions.
const (
	RuleJumbo     = "JUMBO_PACKET"
	RuleFlow      = "FLOW_POLICY"
	RuleDefault   = "DEFAULT_POLICY"
	RuleRateLimit = "RATE_LIMIT"
)

// Decision is the outcome produced for one packet. It is created fresh
// per call and never retained by the engine.
type Decision struct {
	Action Action `json:"action"`
	RuleID string `json:"rule_id"`
}

func (a Action) String() string {
	switch a {
	case ActionPass:
		return "pass"
	case ActionDrop:
		return "drop"
	case ActionReject:
		return "reject"
	case ActionRateLimit:
		return "rate_limit"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// ParseAction converts a textual action name.
func ParseAction(s string) (Action, error) {
	switch s {
	case "pass":
		return ActionPass, nil
	case "drop":
		return ActionDrop, nil
	case "reject":
		return ActionReject, nil
	case "rate_limit":
		return ActionRateLimit, nil
	default:
		return ActionPass, fmt.Errorf("unknown action %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler, also used by
// encoding/json.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// UnmarshalYAML decodes an action from its textual name.
func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

// MarshalYAML encodes an action as its textual name.
func (a Action) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}
