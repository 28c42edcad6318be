package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"signal-sniper/internal/analyst"
	"signal-sniper/internal/events"
	"signal-sniper/internal/filters"
	"signal-sniper/internal/journal"
	"signal-sniper/internal/market"
	"signal-sniper/internal/optimizer"
	"signal-sniper/internal/reflex"
	"signal-sniper/internal/signal"
)

type memorySessionStore struct {
	saved   []reflex.TradingSession
	loaded  *reflex.TradingSession
	loadErr error
}

func (m *memorySessionStore) SaveSession(_ context.Context, s reflex.TradingSession) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *memorySessionStore) LoadSession(_ context.Context) (*reflex.TradingSession, error) {
	return m.loaded, m.loadErr
}

func (m *memorySessionStore) ClearSession(_ context.Context) error {
	m.loaded = nil
	return nil
}

func trendingCandles(n int, start time.Time) []market.Candle {
	candles := make([]market.Candle, n)
	price := 100.0
	for i := range candles {
		open := price
		price += 0.4
		candles[i] = market.Candle{
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute).UnixMilli(),
			Open:      open,
			High:      price + 0.2,
			Low:       open - 0.2,
			Close:     price,
			Volume:    1000 + float64(i)*10,
		}
	}
	return candles
}

func newTestPipeline(store SessionStore) *Pipeline {
	opt := optimizer.New(optimizer.DefaultConfig(), nil)
	eng := filters.NewEngine(filters.DefaultConfig(), nil)
	val := analyst.NewValidator(analyst.DefaultConfig(), nil, nil)
	gate := reflex.NewGate(reflex.DefaultConfig(), nil, nil)
	jrnl := journal.New(nil, zerolog.Nop())
	bus := events.NewEventBus()
	return New(opt, eng, val, gate, jrnl, bus, store, nil, nil)
}

func upRequest(now time.Time) Request {
	candles := trendingCandles(80, now.Add(-80*5*time.Minute))
	return Request{
		Symbol:     "EURUSD",
		Timeframes: market.TimeframeSet{"5m": candles},
		Prediction: &signal.Prediction{
			Direction:  signal.DirectionUp,
			Confidence: 0.85,
			RiskScore:  0.2,
			Timestamp:  now,
		},
	}
}

func TestEvaluateEndToEnd(t *testing.T) {
	store := &memorySessionStore{}
	p := newTestPipeline(store)

	result, err := p.Evaluate(context.Background(), upRequest(time.Now()))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.ID == "" {
		t.Error("expected a signal ID")
	}
	if result.Symbol != "EURUSD" {
		t.Errorf("symbol = %q, want EURUSD", result.Symbol)
	}
	if result.Outcome != signal.OutcomeCompleted && result.Outcome != signal.OutcomeRejected {
		t.Errorf("unexpected outcome %q", result.Outcome)
	}
	if p.Stats().Evaluated != 1 {
		t.Errorf("journal evaluated = %d, want 1", p.Stats().Evaluated)
	}
	if len(store.saved) == 0 {
		t.Error("expected session to be persisted")
	}
}

func TestEvaluateBackfillsFeatures(t *testing.T) {
	p := newTestPipeline(nil)
	req := upRequest(time.Now())
	req.Prediction.Features = map[string]float64{"rsi": 42}
	primary := req.Timeframes["5m"]

	enriched := p.enrichFeatures(req.Prediction, primary, p.optimizer.Current())
	for _, key := range []string{"rsi", "ema9_ema21_ratio", "macd"} {
		if _, ok := enriched.Features[key]; !ok {
			t.Errorf("feature %q not backfilled", key)
		}
	}
	if enriched.Features["rsi"] != 42 {
		t.Errorf("supplied rsi overwritten, got %f", enriched.Features["rsi"])
	}

	// The caller's prediction stays untouched.
	if len(req.Prediction.Features) != 1 {
		t.Errorf("caller feature map mutated, got %d entries", len(req.Prediction.Features))
	}
}

func TestEvaluateValidationErrors(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	if _, err := p.Evaluate(ctx, Request{Prediction: &signal.Prediction{}}); err == nil {
		t.Error("expected error for missing symbol")
	}
	if _, err := p.Evaluate(ctx, Request{Symbol: "EURUSD"}); err == nil {
		t.Error("expected error for missing prediction")
	}

	req := Request{Symbol: "EURUSD", Prediction: &signal.Prediction{Direction: signal.DirectionUp}}
	if _, err := p.Evaluate(ctx, req); !errors.Is(err, signal.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestEmergencyStopBlocksEvaluation(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	p.EmergencyStop(ctx, "operator request")

	result, err := p.Evaluate(ctx, upRequest(time.Now()))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !result.Rejected() {
		t.Fatal("expected rejection after emergency stop")
	}
	if result.RejectionReason.Code != signal.CodeDailyLimit {
		t.Errorf("code = %q, want %q", result.RejectionReason.Code, signal.CodeDailyLimit)
	}
}

func TestReportOutcomeUpdatesSession(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	session, err := p.ReportOutcome(ctx, "sig-1", false, -10)
	if err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}
	if session.ConsecutiveLosses != 1 || session.LossCount != 1 {
		t.Errorf("session = %+v, want one loss", session)
	}

	session, _ = p.ReportOutcome(ctx, "sig-2", true, 18)
	if session.ConsecutiveLosses != 0 || session.WinCount != 1 {
		t.Errorf("session = %+v, want cleared streak", session)
	}
}

func TestRestoreSession(t *testing.T) {
	store := &memorySessionStore{
		loaded: &reflex.TradingSession{
			TradesExecuted:    4,
			ConsecutiveLosses: 2,
			DailyCap:          10,
			StartedAt:         time.Now(),
		},
	}
	p := newTestPipeline(store)

	if err := p.RestoreSession(context.Background()); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	if got := p.Session().TradesExecuted; got != 4 {
		t.Errorf("TradesExecuted = %d, want 4", got)
	}
}

// A session saved on an earlier day must not carry its counters into
// today; the persisted copy gets cleared instead.
func TestRestoreSessionDiscardsStale(t *testing.T) {
	store := &memorySessionStore{
		loaded: &reflex.TradingSession{
			TradesExecuted: 9,
			DailyCap:       10,
			StartedAt:      time.Now().AddDate(0, 0, -1),
		},
	}
	p := newTestPipeline(store)

	if err := p.RestoreSession(context.Background()); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	if got := p.Session().TradesExecuted; got != 0 {
		t.Errorf("TradesExecuted = %d, want 0 after discarding stale session", got)
	}
	if store.loaded != nil {
		t.Error("expected stale persisted session to be cleared")
	}
}

func TestRunOptimizerRecordsResult(t *testing.T) {
	p := newTestPipeline(nil)
	candles := trendingCandles(120, time.Now().Add(-10*time.Hour))

	result, err := p.RunOptimizer(context.Background(), candles)
	if err != nil {
		t.Fatalf("RunOptimizer failed: %v", err)
	}
	if result.Evaluated == 0 {
		t.Error("expected candidate evaluations")
	}
	if p.Optimizer().LastRun().IsZero() {
		t.Error("expected LastRun to be set")
	}
}
