package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pktwall/pktwall/capture"
	"github.com/pktwall/pktwall/enforce"
)

func newTestServer(t *testing.T) (*Server, *enforce.FlowEnforcer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := enforce.NewFlowEnforcer(nil, enforce.ActionPass, nil)
	ring, err := capture.NewRing(1024)
	require.NoError(t, err)
	producer := capture.NewProducer(capture.NewSimSource(time.Millisecond))
	return NewServer(engine, engine.Table(), producer, ring), engine
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndListPolicies(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/policies",
		PolicyRequest{FlowID: 42, Action: "drop"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created PolicyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, uint64(42), created.FlowID)
	assert.Equal(t, "drop", created.Action)

	w = doJSON(t, router, http.MethodGet, "/api/v1/policies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list PolicyListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Policies, 1)
	assert.Equal(t, uint64(42), list.Policies[0].FlowID)
}

func TestCreatePolicyValidation(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/policies",
		PolicyRequest{FlowID: 1, Action: "explode"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "validation_error", errResp.Error)

	// missing action fails binding
	w = doJSON(t, router, http.MethodPost, "/api/v1/policies",
		map[string]interface{}{"flow_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePolicy(t *testing.T) {
	s, engine := newTestServer(t)
	router := s.Router()
	require.NoError(t, engine.EnforceFlowPolicy(7, enforce.ActionDrop))

	w := doJSON(t, router, http.MethodDelete, "/api/v1/policies/7", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := engine.Table().Get(7)
	assert.False(t, ok)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/policies/notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDefaultActionRoundTrip(t *testing.T) {
	s, engine := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/api/v1/default-action", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp DefaultActionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pass", resp.Action)

	w = doJSON(t, router, http.MethodPut, "/api/v1/default-action",
		DefaultActionResponse{Action: "reject"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, enforce.ActionReject, engine.DefaultAction())

	w = doJSON(t, router, http.MethodPut, "/api/v1/default-action",
		DefaultActionResponse{Action: "explode"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecideEndpoint(t *testing.T) {
	s, engine := newTestServer(t)
	router := s.Router()

	payload := []byte("packet bytes")
	require.NoError(t, engine.EnforceFlowPolicy(enforce.DefaultKeyFunc(payload), enforce.ActionDrop))

	w := doJSON(t, router, http.MethodPost, "/api/v1/decide",
		DecideRequest{Payload: base64.StdEncoding.EncodeToString(payload)})
	require.Equal(t, http.StatusOK, w.Code)

	var resp DecideResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "drop", resp.Action)
	assert.Equal(t, enforce.RuleFlow, resp.RuleID)

	// explicit oversize length overrides the payload length
	w = doJSON(t, router, http.MethodPost, "/api/v1/decide",
		DecideRequest{Payload: base64.StdEncoding.EncodeToString(payload), Length: 2000})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, enforce.RuleJumbo, resp.RuleID)

	w = doJSON(t, router, http.MethodPost, "/api/v1/decide",
		DecideRequest{Payload: "not base64!!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecideEndpointOversizedPayload(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	// a payload past the uint16 range must still classify as jumbo, not
	// wrap around to a small length
	payload := make([]byte, math.MaxUint16+101)
	w := doJSON(t, router, http.MethodPost, "/api/v1/decide",
		DecideRequest{Payload: base64.StdEncoding.EncodeToString(payload)})
	require.Equal(t, http.StatusOK, w.Code)

	var resp DecideResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "drop", resp.Action)
	assert.Equal(t, enforce.RuleJumbo, resp.RuleID)
}

func TestCaptureLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/capture/start",
		CaptureStartRequest{Interface: "sim0"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp CaptureStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, capture.StatusStarted, resp.Status)

	w = doJSON(t, router, http.MethodPost, "/api/v1/capture/start",
		CaptureStartRequest{Interface: "sim0"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, capture.StatusAlreadyRunning, resp.Status)
	assert.NotEmpty(t, resp.Error)

	w = doJSON(t, router, http.MethodPost, "/api/v1/capture/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.producer.Wait()

	w = doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Running)
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Running)
	assert.Zero(t, status.Produced)
}
