// Package api exposes the control plane over HTTP: flow policy CRUD,
// default action, capture lifecycle, and ad-hoc decisions.
package api

// ErrorResponse is the standard API error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewErrorResponse creates an error body.
func NewErrorResponse(code int, err string, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   err,
		Message: message,
		Code:    code,
	}
}

// PolicyRequest installs a per-flow action.
type PolicyRequest struct {
	FlowID uint64 `json:"flow_id"`
	Action string `json:"action" binding:"required"`
}

// PolicyResponse mirrors one installed flow policy.
type PolicyResponse struct {
	FlowID uint64 `json:"flow_id"`
	Action string `json:"action"`
}

// PolicyListResponse lists installed flow policies.
type PolicyListResponse struct {
	Policies []PolicyResponse `json:"policies"`
	Count    int              `json:"count"`
}

// DefaultActionResponse carries the engine's fallback action.
type DefaultActionResponse struct {
	Action string `json:"action"`
}

// DecideRequest asks for a classification of raw packet bytes.
type DecideRequest struct {
	// Payload is base64-encoded packet bytes.
	Payload string `json:"payload"`
	// Length is the observed packet length; defaults to the decoded
	// payload length.
	Length uint16 `json:"length"`
}

// DecideResponse carries a classification outcome.
type DecideResponse struct {
	Action string `json:"action"`
	RuleID string `json:"rule_id"`
}

// CaptureStartRequest starts the capture producer.
type CaptureStartRequest struct {
	Interface string `json:"interface" binding:"required"`
}

// CaptureStatusResponse carries the boundary status code of a capture
// lifecycle call: 0 started/signaled, 1 already running, 2 launch
// failure.
type CaptureStatusResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusResponse reports the producer state for external readers.
type StatusResponse struct {
	Running    bool   `json:"running"`
	WriteIndex uint64 `json:"write_index"`
	Produced   uint64 `json:"produced"`
	Dropped    uint64 `json:"dropped"`
}
