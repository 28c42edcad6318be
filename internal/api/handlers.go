package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"signal-sniper/internal/auth"
	"signal-sniper/internal/market"
	"signal-sniper/internal/pipeline"
	"signal-sniper/internal/signal"

	"github.com/gin-gonic/gin"
)

// handleLogin authenticates an operator and issues an access token
func (s *Server) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), req)
	if err != nil {
		var authErr auth.AuthError
		if errors.As(err, &authErr) {
			errorResponse(c, http.StatusUnauthorized, authErr.Message)
			return
		}
		errorResponse(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleEvaluateSignal runs one prediction through the full decision
// pipeline and returns the signal result
func (s *Server) handleEvaluateSignal(c *gin.Context) {
	var req pipeline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid evaluation request: "+err.Error())
		return
	}

	result, err := s.pipeline.Evaluate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, signal.ErrInsufficientData) {
			errorResponse(c, http.StatusUnprocessableEntity, "not enough candle history to evaluate")
			return
		}
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	successResponse(c, result)
}

// OutcomeRequest reports the result of a completed trade
type OutcomeRequest struct {
	SignalID string  `json:"signal_id" binding:"required"`
	Outcome  string  `json:"outcome" binding:"required"` // WIN or LOSS
	PnL      float64 `json:"pnl"`
}

// handleReportOutcome records a trade outcome against a signal
func (s *Server) handleReportOutcome(c *gin.Context) {
	var req OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "signal_id and outcome are required")
		return
	}

	outcome := strings.ToUpper(req.Outcome)
	if outcome != "WIN" && outcome != "LOSS" {
		errorResponse(c, http.StatusBadRequest, "outcome must be WIN or LOSS")
		return
	}

	session, err := s.pipeline.ReportOutcome(c.Request.Context(), req.SignalID, outcome == "WIN", req.PnL)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, gin.H{
		"signal_id": req.SignalID,
		"outcome":   outcome,
		"session":   session,
	})
}

// handleGetSignals returns recently evaluated signals
func (s *Server) handleGetSignals(c *gin.Context) {
	if s.repo == nil {
		errorResponse(c, http.StatusServiceUnavailable, "signal history requires database")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	signals, err := s.repo.ListRecentSignals(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load signals")
		return
	}

	successResponse(c, signals)
}

// handleGetSignal returns one signal by ID
func (s *Server) handleGetSignal(c *gin.Context) {
	if s.repo == nil {
		errorResponse(c, http.StatusServiceUnavailable, "signal history requires database")
		return
	}

	entry, err := s.repo.GetSignalByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load signal")
		return
	}
	if entry == nil {
		errorResponse(c, http.StatusNotFound, "signal not found")
		return
	}

	successResponse(c, entry)
}

// handleGetSignalStats returns evaluation statistics. Persistent stats
// come from the database when available, process counters otherwise.
func (s *Server) handleGetSignalStats(c *gin.Context) {
	if s.repo != nil {
		stats, err := s.repo.GetSignalStats(c.Request.Context())
		if err == nil {
			successResponse(c, stats)
			return
		}
	}
	successResponse(c, s.pipeline.Stats())
}

// handleGetSession returns the current trading session
func (s *Server) handleGetSession(c *gin.Context) {
	successResponse(c, s.pipeline.Session())
}

// handleResetSession starts a fresh daily trading session
func (s *Server) handleResetSession(c *gin.Context) {
	session := s.pipeline.ResetDaily(c.Request.Context())
	successResponse(c, session)
}

// EmergencyStopRequest carries the operator's reason for the halt
type EmergencyStopRequest struct {
	Reason string `json:"reason"`
}

// handleEmergencyStop halts trading until the next daily reset
func (s *Server) handleEmergencyStop(c *gin.Context) {
	var req EmergencyStopRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "operator request"
	}

	session := s.pipeline.EmergencyStop(c.Request.Context(), req.Reason)
	successResponse(c, gin.H{
		"reason":  req.Reason,
		"session": session,
	})
}

// handleGetOptimizerState returns the active indicator parameters
func (s *Server) handleGetOptimizerState(c *gin.Context) {
	opt := s.pipeline.Optimizer()
	successResponse(c, gin.H{
		"parameters": opt.Current(),
		"scores":     opt.Scores(),
		"last_run":   opt.LastRun(),
		"needs_run":  opt.NeedsRun(),
	})
}

// OptimizerRunRequest carries the candle history to calibrate against
type OptimizerRunRequest struct {
	Candles []market.Candle `json:"candles" binding:"required"`
}

// handleRunOptimizer forces a parameter recalibration
func (s *Server) handleRunOptimizer(c *gin.Context) {
	var req OptimizerRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "candles are required")
		return
	}

	result, err := s.pipeline.RunOptimizer(c.Request.Context(), req.Candles)
	if err != nil {
		switch {
		case errors.Is(err, signal.ErrOptimizationInFlight):
			errorResponse(c, http.StatusConflict, "optimization already in progress")
		case errors.Is(err, signal.ErrInsufficientData):
			errorResponse(c, http.StatusUnprocessableEntity, "not enough candle history to optimize")
		default:
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	successResponse(c, result)
}
