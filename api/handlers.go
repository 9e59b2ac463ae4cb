package api

import (
	"encoding/base64"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/pktwall/pktwall/capture"
	"github.com/pktwall/pktwall/enforce"
)

// Server holds the control-plane dependencies.
type Server struct {
	engine   enforce.Engine
	table    *enforce.FlowTable
	producer *capture.Producer
	ring     *capture.Ring
}

// NewServer creates a control-plane server. Table may be nil when the
// engine exposes no listable table; producer and ring may be nil when
// capture is managed elsewhere.
func NewServer(engine enforce.Engine, table *enforce.FlowTable, producer *capture.Producer, ring *capture.Ring) *Server {
	return &Server{
		engine:   engine,
		table:    table,
		producer: producer,
		ring:     ring,
	}
}

// Router builds the gin engine with all control-plane routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", s.GetStatus)
		v1.POST("/policies", s.CreatePolicy)
		v1.GET("/policies", s.ListPolicies)
		v1.DELETE("/policies/:flow_id", s.DeletePolicy)
		v1.GET("/default-action", s.GetDefaultAction)
		v1.PUT("/default-action", s.SetDefaultAction)
		v1.POST("/decide", s.Decide)
		v1.POST("/capture/start", s.StartCapture)
		v1.POST("/capture/stop", s.StopCapture)
	}
	return r
}

// GetStatus handles GET /api/v1/status.
func (s *Server) GetStatus(c *gin.Context) {
	resp := StatusResponse{}
	if s.producer != nil {
		resp.Running = s.producer.Running()
		resp.WriteIndex = s.producer.WriteIndex()
		resp.Produced = s.producer.Produced()
		resp.Dropped = s.producer.Dropped()
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePolicy handles POST /api/v1/policies.
func (s *Server) CreatePolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", err.Error()))
		return
	}

	action, err := enforce.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", err.Error()))
		return
	}

	if err := s.engine.EnforceFlowPolicy(req.FlowID, action); err != nil {
		log.WithError(err).Error("failed to enforce flow policy")
		c.JSON(http.StatusInternalServerError, NewErrorResponse(
			http.StatusInternalServerError, "policy_error", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, PolicyResponse{
		FlowID: req.FlowID,
		Action: action.String(),
	})
}

// ListPolicies handles GET /api/v1/policies.
func (s *Server) ListPolicies(c *gin.Context) {
	if s.table == nil {
		c.JSON(http.StatusOK, PolicyListResponse{Policies: []PolicyResponse{}})
		return
	}
	items, err := s.table.Items()
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(
			http.StatusInternalServerError, "policy_error", err.Error()))
		return
	}

	policies := make([]PolicyResponse, 0, len(items))
	for flow, action := range items {
		policies = append(policies, PolicyResponse{
			FlowID: flow,
			Action: action.String(),
		})
	}
	c.JSON(http.StatusOK, PolicyListResponse{
		Policies: policies,
		Count:    len(policies),
	})
}

// DeletePolicy handles DELETE /api/v1/policies/:flow_id.
func (s *Server) DeletePolicy(c *gin.Context) {
	flow, err := strconv.ParseUint(c.Param("flow_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", "invalid flow id"))
		return
	}
	if s.table == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(
			http.StatusNotFound, "policy_error", "no policy table"))
		return
	}
	if err := s.table.Delete(flow); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(
			http.StatusInternalServerError, "policy_error", err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDefaultAction handles GET /api/v1/default-action.
func (s *Server) GetDefaultAction(c *gin.Context) {
	c.JSON(http.StatusOK, DefaultActionResponse{
		Action: s.engine.DefaultAction().String(),
	})
}

// SetDefaultAction handles PUT /api/v1/default-action.
func (s *Server) SetDefaultAction(c *gin.Context) {
	var req DefaultActionResponse
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", err.Error()))
		return
	}
	action, err := enforce.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", err.Error()))
		return
	}
	s.engine.SetDefaultAction(action)
	c.JSON(http.StatusOK, DefaultActionResponse{Action: action.String()})
}

// Decide handles POST /api/v1/decide.
func (s *Server) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", err.Error()))
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", "payload is not valid base64"))
		return
	}
	length := req.Length
	if length == 0 {
		// payloads beyond the uint16 range are well past the jumbo
		// bound; saturate instead of wrapping
		if len(payload) > math.MaxUint16 {
			length = math.MaxUint16
		} else {
			length = uint16(len(payload))
		}
	}

	decision := s.engine.Decide(payload, length)
	c.JSON(http.StatusOK, DecideResponse{
		Action: decision.Action.String(),
		RuleID: decision.RuleID,
	})
}

// StartCapture handles POST /api/v1/capture/start.
func (s *Server) StartCapture(c *gin.Context) {
	var req CaptureStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			http.StatusBadRequest, "validation_error", err.Error()))
		return
	}
	if s.producer == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(
			http.StatusNotFound, "capture_error", "no capture producer"))
		return
	}

	err := s.producer.Start(req.Interface, s.ring)
	resp := CaptureStatusResponse{Status: capture.StartStatus(err)}
	if err != nil {
		resp.Error = err.Error()
	}
	switch resp.Status {
	case capture.StatusStarted:
		c.JSON(http.StatusOK, resp)
	case capture.StatusAlreadyRunning:
		c.JSON(http.StatusConflict, resp)
	default:
		c.JSON(http.StatusInternalServerError, resp)
	}
}

// StopCapture handles POST /api/v1/capture/stop. Stop is
// signal-and-return; callers poll /status to observe the exit.
func (s *Server) StopCapture(c *gin.Context) {
	if s.producer == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(
			http.StatusNotFound, "capture_error", "no capture producer"))
		return
	}
	s.producer.Stop()
	c.JSON(http.StatusOK, CaptureStatusResponse{Status: 0})
}
