package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"signal-sniper/internal/analyst"
	"signal-sniper/internal/events"
	"signal-sniper/internal/filters"
	"signal-sniper/internal/journal"
	"signal-sniper/internal/market"
	"signal-sniper/internal/optimizer"
	"signal-sniper/internal/pipeline"
	"signal-sniper/internal/reflex"
	"signal-sniper/internal/signal"
)

func newTestServer() *Server {
	opt := optimizer.New(optimizer.DefaultConfig(), nil)
	eng := filters.NewEngine(filters.DefaultConfig(), nil)
	val := analyst.NewValidator(analyst.DefaultConfig(), nil, nil)
	gate := reflex.NewGate(reflex.DefaultConfig(), nil, nil)
	jrnl := journal.New(nil, zerolog.Nop())
	bus := events.NewEventBus()
	pipe := pipeline.New(opt, eng, val, gate, jrnl, bus, nil, nil, nil)

	return NewServer(ServerConfig{Port: 0, Host: "127.0.0.1"}, nil, bus, pipe, nil)
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid health body: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if _, err := time.ParseDuration(resp.Uptime); err != nil {
		t.Errorf("uptime %q is not a duration: %v", resp.Uptime, err)
	}
}

func TestGetSessionEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/api/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success bool                  `json:"success"`
		Data    reflex.TradingSession `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.DailyCap == 0 {
		t.Error("expected a non-zero daily cap in a fresh session")
	}
}

func TestEvaluateEndpointValidation(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodPost, "/api/signal/evaluate", map[string]interface{}{
		"symbol": "EURUSD",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing prediction", w.Code)
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	s := newTestServer()
	now := time.Now()

	candles := make([]market.Candle, 80)
	price := 100.0
	for i := range candles {
		open := price
		price += 0.4
		candles[i] = market.Candle{
			Timestamp: now.Add(time.Duration(i-80) * 5 * time.Minute).UnixMilli(),
			Open:      open,
			High:      price + 0.2,
			Low:       open - 0.2,
			Close:     price,
			Volume:    1000,
		}
	}

	w := doRequest(s, http.MethodPost, "/api/signal/evaluate", pipeline.Request{
		Symbol:     "EURUSD",
		Timeframes: market.TimeframeSet{"5m": candles},
		Prediction: &signal.Prediction{
			Direction:  signal.DirectionUp,
			Confidence: 0.85,
			RiskScore:  0.2,
			Timestamp:  now,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool                 `json:"success"`
		Data    *signal.SignalResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data == nil || resp.Data.ID == "" {
		t.Error("expected a signal result with an ID")
	}
}

func TestOutcomeEndpointValidation(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodPost, "/api/signal/outcome", OutcomeRequest{
		SignalID: "sig-1",
		Outcome:  "DRAW",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad outcome", w.Code)
	}

	w = doRequest(s, http.MethodPost, "/api/signal/outcome", OutcomeRequest{
		SignalID: "sig-1",
		Outcome:  "win",
		PnL:      18,
	})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for lowercase outcome", w.Code)
	}
}

func TestEmergencyStopEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodPost, "/api/session/emergency-stop", EmergencyStopRequest{Reason: "drawdown"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/api/session", nil)
	var resp struct {
		Data reflex.TradingSession `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.DailyCap != 0 {
		t.Errorf("daily cap = %d, want 0 after emergency stop", resp.Data.DailyCap)
	}
}

func TestSignalsEndpointWithoutDatabase(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/api/signals", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without database", w.Code)
	}
}

func TestOptimizerStateEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/api/optimizer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Data struct {
			NeedsRun bool `json:"needs_run"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Data.NeedsRun {
		t.Error("expected needs_run true before first optimization")
	}
}
