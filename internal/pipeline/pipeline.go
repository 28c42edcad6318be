package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signal-sniper/internal/analysis"
	"signal-sniper/internal/analyst"
	"signal-sniper/internal/events"
	"signal-sniper/internal/filters"
	"signal-sniper/internal/indicators"
	"signal-sniper/internal/journal"
	"signal-sniper/internal/logging"
	"signal-sniper/internal/market"
	"signal-sniper/internal/optimizer"
	"signal-sniper/internal/patterns"
	"signal-sniper/internal/reflex"
	"signal-sniper/internal/signal"
)

const (
	patternLookback    = 10
	volumeAvgPeriod    = 20
	emaFastPeriod      = 9
	emaSlowPeriod      = 21
	volumeSpikeMinimum = 2.0
)

// SessionStore persists the trading session across restarts.
type SessionStore interface {
	SaveSession(ctx context.Context, session reflex.TradingSession) error
	LoadSession(ctx context.Context) (*reflex.TradingSession, error)
	ClearSession(ctx context.Context) error
}

// RunRecorder records completed optimizer runs.
type RunRecorder interface {
	CreateOptimizerRun(ctx context.Context, evaluated int, parameters, scores any, runAt time.Time) error
}

// Request is one end-to-end evaluation request.
type Request struct {
	Symbol     string                `json:"symbol"`
	Timeframes market.TimeframeSet   `json:"timeframes"`
	Prediction *signal.Prediction    `json:"prediction"`
	RegimeHint analysis.MarketRegime `json:"regimeHint,omitempty"`
}

// Pipeline wires the optimizer, filter engine, analyst and decision
// gate into the end-to-end evaluation flow, and fans results out to
// the journal, event bus and session store.
type Pipeline struct {
	optimizer *optimizer.Optimizer
	filters   *filters.Engine
	validator *analyst.Validator
	gate      *reflex.Gate
	journal   *journal.Journal
	bus       *events.EventBus
	sessions  SessionStore
	runs      RunRecorder
	detector  *patterns.PatternDetector
	log       *logging.Logger
}

// New assembles the pipeline. The session store and run recorder may
// be nil, in which case persistence is skipped.
func New(
	opt *optimizer.Optimizer,
	eng *filters.Engine,
	val *analyst.Validator,
	gate *reflex.Gate,
	jrnl *journal.Journal,
	bus *events.EventBus,
	sessions SessionStore,
	runs RunRecorder,
	log *logging.Logger,
) *Pipeline {
	if log == nil {
		log = logging.Default()
	}
	return &Pipeline{
		optimizer: opt,
		filters:   eng,
		validator: val,
		gate:      gate,
		journal:   jrnl,
		bus:       bus,
		sessions:  sessions,
		runs:      runs,
		detector:  patterns.NewPatternDetector(0),
		log:       log.WithComponent("pipeline"),
	}
}

// Evaluate runs one prediction through every stage and returns the
// final signal result. The result is journaled and broadcast before
// returning.
func (p *Pipeline) Evaluate(ctx context.Context, req Request) (*signal.SignalResult, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if req.Prediction == nil {
		return nil, fmt.Errorf("prediction is required")
	}
	primary := req.Timeframes.Primary()
	if len(primary) == 0 {
		return nil, signal.ErrInsufficientData
	}

	p.refreshParameters(ctx, primary)
	params := p.optimizer.Current()

	snapshot := p.filters.Evaluate(req.Timeframes, params, req.RegimeHint)
	summary := p.detector.Summarize(primary, patternLookback)

	prediction := p.enrichFeatures(req.Prediction, primary, params)

	validation := p.validator.Validate(ctx, analyst.Input{
		Symbol:     req.Symbol,
		Prediction: prediction,
		Snapshot:   snapshot,
		Patterns:   &summary,
	})

	volumeRatio := indicators.VolumeRatio(primary, volumeAvgPeriod)

	result := p.gate.Evaluate(ctx, reflex.Input{
		Symbol:      req.Symbol,
		Prediction:  prediction,
		Validation:  validation,
		Snapshot:    snapshot,
		Patterns:    &summary,
		VolumeRatio: volumeRatio,
		VolumeSpike: volumeRatio >= volumeSpikeMinimum,
		RSI:         prediction.Features["rsi"],
		MACD:        prediction.Features["macd"],
		MarketTime:  req.Timeframes.LatestTime(),
	})

	if err := p.journal.OnSignalEvaluated(ctx, result); err != nil {
		p.log.WithError(err).Warn("Failed to journal signal result", "signal_id", result.ID)
	}
	if p.bus != nil {
		if result.Rejected() && result.RejectionReason != nil {
			p.bus.PublishSignalRejected(result.ID, result.Symbol,
				result.RejectionReason.Code, result.RejectionReason.Reason)
		} else {
			p.bus.PublishSignalEvaluated(result.ID, result.Symbol, string(result.Direction),
				string(result.SignalQuality), result.TradeScore, result.Confidence)
		}
	}
	p.persistSession(ctx)

	return result, nil
}

// ReportOutcome records the result of a completed trade and updates
// session counters.
func (p *Pipeline) ReportOutcome(ctx context.Context, signalID string, win bool, pnl float64) (reflex.TradingSession, error) {
	session := p.gate.ReportOutcome(win, pnl)

	if err := p.journal.OnOutcomeReported(ctx, signalID, win, pnl); err != nil {
		p.log.WithError(err).Warn("Failed to journal trade outcome", "signal_id", signalID)
	}
	if p.bus != nil {
		p.bus.PublishOutcomeReported(signalID, win, pnl, session.ConsecutiveLosses)
	}
	p.persistSession(ctx)

	return session, nil
}

// RunOptimizer forces a recalibration against the supplied history.
func (p *Pipeline) RunOptimizer(ctx context.Context, history []market.Candle) (*optimizer.Result, error) {
	result, err := p.optimizer.Optimize(history)
	if err != nil {
		return nil, err
	}
	p.recordRun(ctx, result)
	return result, nil
}

// Session returns a copy of the current trading session.
func (p *Pipeline) Session() reflex.TradingSession {
	return p.gate.Session()
}

// RestoreSession loads a persisted session into the gate, if one
// exists.
func (p *Pipeline) RestoreSession(ctx context.Context) error {
	if p.sessions == nil {
		return nil
	}
	saved, err := p.sessions.LoadSession(ctx)
	if err != nil {
		return err
	}
	if saved == nil {
		return nil
	}
	// A session persisted on a previous UTC day carries stale
	// counters; discard it and let the gate start fresh.
	if !sameUTCDay(saved.StartedAt, time.Now()) {
		if err := p.sessions.ClearSession(ctx); err != nil {
			p.log.WithError(err).Warn("Failed to clear stale trading session")
		}
		return nil
	}
	p.gate.RestoreSession(*saved)
	p.log.Info("Trading session restored",
		"trades_executed", saved.TradesExecuted,
		"consecutive_losses", saved.ConsecutiveLosses)
	return nil
}

// ResetDaily starts a fresh trading session.
func (p *Pipeline) ResetDaily(ctx context.Context) reflex.TradingSession {
	session := p.gate.ResetDaily()
	if p.bus != nil {
		p.bus.PublishSessionReset()
	}
	p.persistSession(ctx)
	return session
}

// EmergencyStop halts all further trading until the next daily reset.
func (p *Pipeline) EmergencyStop(ctx context.Context, reason string) reflex.TradingSession {
	session := p.gate.EmergencyStop()
	if p.bus != nil {
		p.bus.PublishEmergencyStop(reason)
	}
	p.persistSession(ctx)
	return session
}

// Optimizer exposes the active parameter state for read-only queries.
func (p *Pipeline) Optimizer() *optimizer.Optimizer {
	return p.optimizer
}

// Stats returns journal counters for the current process.
func (p *Pipeline) Stats() journal.Stats {
	return p.journal.Stats()
}

// refreshParameters opportunistically recalibrates stale indicator
// parameters before an evaluation. An optimization already in flight
// or inconclusive data leaves the active set untouched.
func (p *Pipeline) refreshParameters(ctx context.Context, primary []market.Candle) {
	if !p.optimizer.NeedsRun() {
		return
	}
	result, err := p.optimizer.Optimize(primary)
	if err != nil {
		if errors.Is(err, signal.ErrOptimizationInFlight) {
			return
		}
		p.log.WithError(err).Warn("Parameter recalibration skipped")
		return
	}
	p.recordRun(ctx, result)
}

func (p *Pipeline) recordRun(ctx context.Context, result *optimizer.Result) {
	if p.bus != nil {
		p.bus.PublishOptimizationCompleted(result.Evaluated, result.Scores)
	}
	if p.runs == nil {
		return
	}
	if err := p.runs.CreateOptimizerRun(ctx, result.Evaluated, result.Parameters, result.Scores, result.RunAt); err != nil {
		p.log.WithError(err).Warn("Failed to record optimizer run")
	}
}

// enrichFeatures backfills quant features the analyst recomputation
// reads when the caller did not supply them. The incoming prediction
// is left untouched; downstream stages get an enriched copy.
func (p *Pipeline) enrichFeatures(pred *signal.Prediction, primary []market.Candle, params indicators.ParameterSet) *signal.Prediction {
	enriched := *pred
	enriched.Features = make(map[string]float64, len(pred.Features)+3)
	for k, v := range pred.Features {
		enriched.Features[k] = v
	}
	closes := market.Closes(primary)

	if _, ok := enriched.Features["rsi"]; !ok {
		if rsi := indicators.RSI(closes, params.RSI.Period); indicators.Valid(rsi) {
			enriched.Features["rsi"] = rsi
		}
	}
	if _, ok := enriched.Features["ema9_ema21_ratio"]; !ok {
		fast := indicators.EMA(closes, emaFastPeriod)
		slow := indicators.EMA(closes, emaSlowPeriod)
		if indicators.Valid(fast) && indicators.Valid(slow) && slow != 0 {
			enriched.Features["ema9_ema21_ratio"] = fast / slow
		}
	}
	if _, ok := enriched.Features["macd"]; !ok {
		if macd := indicators.MACD(closes, params.MACD.FastPeriod, params.MACD.SlowPeriod, params.MACD.SignalPeriod); macd != nil {
			enriched.Features["macd"] = macd.MACD
		}
	}
	return &enriched
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (p *Pipeline) persistSession(ctx context.Context) {
	if p.sessions == nil {
		return
	}
	if err := p.sessions.SaveSession(ctx, p.gate.Session()); err != nil {
		p.log.WithError(err).Warn("Failed to persist trading session")
	}
}
