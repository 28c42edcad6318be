package reflex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"signal-sniper/internal/filters"
	"signal-sniper/internal/logging"
	"signal-sniper/internal/patterns"
	"signal-sniper/internal/reasoning"
	"signal-sniper/internal/signal"
)

// Pre-flight thresholds. The checks run in declaration order and the
// first failure is reported.
const (
	minQuantConfidence   = 0.3
	minAnalystConfidence = 0.2
	maxRiskScore         = 0.8
	minConfluenceScore   = 20.0
)

// Config controls the decision gate.
type Config struct {
	MaxDailyTrades            int
	MaxConsecutiveLosses      int
	MinInterval               time.Duration
	MaxDataAge                time.Duration
	JudgmentTimeout           time.Duration
	RequireVolumeConfirmation bool
	BaseAmount                float64
}

// DefaultConfig returns the stock gate settings.
func DefaultConfig() Config {
	return Config{
		MaxDailyTrades:            10,
		MaxConsecutiveLosses:      3,
		MinInterval:               60 * time.Second,
		MaxDataAge:                10 * time.Minute,
		JudgmentTimeout:           2 * time.Second,
		RequireVolumeConfirmation: true,
		BaseAmount:                10,
	}
}

// Input bundles the upstream stage outputs for one evaluation.
type Input struct {
	Symbol     string
	Prediction *signal.Prediction
	Validation *signal.Validation
	Snapshot   *filters.Snapshot
	Patterns   *patterns.PatternSummary

	// Technical context read by the adjustment rules.
	VolumeRatio float64
	VolumeSpike bool
	RSI         float64
	MACD        float64

	// MarketTime is the newest candle timestamp. Zero skips the
	// staleness check.
	MarketTime time.Time
}

// Gate runs the three-stage evaluation and owns the trading session.
// Each evaluation is a single pass with terminal outcomes, no retry.
type Gate struct {
	cfg      Config
	provider reasoning.Provider
	log      *logging.Logger

	mu      sync.Mutex
	session TradingSession

	now func() time.Time
}

// NewGate builds a gate. provider may be nil, in which case every
// quality judgment uses the deterministic fallback table.
func NewGate(cfg Config, provider reasoning.Provider, log *logging.Logger) *Gate {
	def := DefaultConfig()
	if cfg.MaxDailyTrades <= 0 {
		cfg.MaxDailyTrades = def.MaxDailyTrades
	}
	if cfg.MaxConsecutiveLosses <= 0 {
		cfg.MaxConsecutiveLosses = def.MaxConsecutiveLosses
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.MaxDataAge <= 0 {
		cfg.MaxDataAge = def.MaxDataAge
	}
	if cfg.JudgmentTimeout <= 0 {
		cfg.JudgmentTimeout = def.JudgmentTimeout
	}
	if cfg.BaseAmount <= 0 {
		cfg.BaseAmount = def.BaseAmount
	}
	if log == nil {
		log = logging.Default()
	}

	g := &Gate{
		cfg:      cfg,
		provider: provider,
		log:      log.WithComponent("reflex"),
		now:      time.Now,
	}
	g.session = TradingSession{
		DailyCap:  cfg.MaxDailyTrades,
		StartedAt: g.now(),
	}
	return g
}

// Session returns a copy of the current session state.
func (g *Gate) Session() TradingSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// RestoreSession replaces the session state, used when reloading a
// persisted session at startup. The snapshot is trusted as-is; a zero
// DailyCap means the session was emergency-stopped.
func (g *Gate) RestoreSession(s TradingSession) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = s
}

// Evaluate runs pre-flight, quality judgment, and the adjustment
// rules, then updates the session for accepted results.
func (g *Gate) Evaluate(ctx context.Context, in Input) *signal.SignalResult {
	now := g.now()

	g.mu.Lock()
	rejection := g.preflight(in, now)
	g.mu.Unlock()

	if rejection != nil {
		g.log.Info("Signal rejected at pre-flight",
			"symbol", in.Symbol, "code", rejection.Code, "reason", rejection.Reason)
		return g.rejectedResult(in, rejection, now)
	}

	judgment, fallbackUsed := g.judge(ctx, in)
	judgment = g.adjust(in, judgment)
	harmonize(judgment)

	confidence := clamp(judgment.Confidence/100, 0, 1)
	stake := g.recommendStake(judgment.TradeScore, confidence, in.Prediction.RiskScore)

	result := &signal.SignalResult{
		ID:                  uuid.NewString(),
		Symbol:              in.Symbol,
		Outcome:             signal.OutcomeCompleted,
		Direction:           in.Prediction.Direction,
		SignalQuality:       judgment.Quality,
		TradeScore:          judgment.TradeScore,
		Confidence:          confidence,
		TradeRecommendation: recommendation(judgment.Quality, in.Prediction.Direction),
		RecommendedStake:    stake,
		RiskAssessment:      riskAssessment(in.Prediction.RiskScore, confidence),
		FallbackUsed:        fallbackUsed,
		Timestamp:           now,
	}
	if in.Snapshot != nil {
		result.SetupTag = in.Snapshot.SetupTag
	}

	if judgment.Quality == signal.QualityExcellent || judgment.Quality == signal.QualityGood {
		g.mu.Lock()
		g.session.TradesExecuted++
		g.session.LastTradeTime = now
		g.mu.Unlock()
	}

	g.log.Info("Signal evaluated",
		"symbol", in.Symbol,
		"quality", string(judgment.Quality),
		"trade_score", judgment.TradeScore,
		"confidence", confidence,
		"fallback", fallbackUsed)

	return result
}

// preflight returns the first failed check, or nil. Caller holds the
// session lock.
func (g *Gate) preflight(in Input, now time.Time) *signal.Rejection {
	if in.Prediction == nil || in.Validation == nil {
		return &signal.Rejection{
			Code:   signal.CodeMissingStages,
			Reason: "Pipeline stage output missing",
		}
	}
	if in.Validation.Verdict == signal.VerdictHighRisk {
		return &signal.Rejection{
			Code:   signal.CodeHighRiskValidation,
			Reason: "Analyst validation flagged HIGH_RISK",
		}
	}
	if in.Prediction.Confidence < minQuantConfidence {
		return &signal.Rejection{
			Code:   signal.CodeLowQuantConfidence,
			Reason: fmt.Sprintf("Quant confidence %.2f below %.2f", in.Prediction.Confidence, minQuantConfidence),
		}
	}
	if in.Validation.Confidence < minAnalystConfidence {
		return &signal.Rejection{
			Code:   signal.CodeLowAnalystConfidence,
			Reason: fmt.Sprintf("Analyst confidence %.2f below %.2f", in.Validation.Confidence, minAnalystConfidence),
		}
	}
	if in.Prediction.RiskScore > maxRiskScore {
		return &signal.Rejection{
			Code:   signal.CodeHighRiskScore,
			Reason: fmt.Sprintf("Risk score %.2f above %.2f", in.Prediction.RiskScore, maxRiskScore),
		}
	}
	if in.Validation.ConfluenceScore < minConfluenceScore {
		return &signal.Rejection{
			Code:   signal.CodeLowConfluence,
			Reason: fmt.Sprintf("Confluence too low: %.0f", in.Validation.ConfluenceScore),
		}
	}
	if g.session.Halted() {
		return &signal.Rejection{
			Code:   signal.CodeDailyLimit,
			Reason: fmt.Sprintf("Daily trade limit reached (%d/%d)", g.session.TradesExecuted, g.session.DailyCap),
		}
	}
	if g.session.ConsecutiveLosses >= g.cfg.MaxConsecutiveLosses {
		return &signal.Rejection{
			Code:   signal.CodeConsecutiveLosses,
			Reason: fmt.Sprintf("Consecutive loss limit reached (%d)", g.session.ConsecutiveLosses),
		}
	}
	if !g.session.LastTradeTime.IsZero() && now.Sub(g.session.LastTradeTime) < g.cfg.MinInterval {
		return &signal.Rejection{
			Code:   signal.CodeCooldownActive,
			Reason: fmt.Sprintf("Minimum interval between trades is %s", g.cfg.MinInterval),
		}
	}
	if !in.MarketTime.IsZero() && now.Sub(in.MarketTime) > g.cfg.MaxDataAge {
		return &signal.Rejection{
			Code:   signal.CodeStaleData,
			Reason: fmt.Sprintf("Market data is %s old", now.Sub(in.MarketTime).Round(time.Second)),
		}
	}
	return nil
}

func (g *Gate) rejectedResult(in Input, rejection *signal.Rejection, now time.Time) *signal.SignalResult {
	result := &signal.SignalResult{
		ID:                  uuid.NewString(),
		Symbol:              in.Symbol,
		Outcome:             signal.OutcomeRejected,
		SignalQuality:       signal.QualityPoor,
		TradeRecommendation: "DO NOT TRADE",
		RejectionReason:     rejection,
		Timestamp:           now,
	}
	if in.Prediction != nil {
		result.Direction = in.Prediction.Direction
	}
	return result
}

// ReportOutcome records a WIN or LOSS for the last executed trade.
func (g *Gate) ReportOutcome(win bool, pnl float64) TradingSession {
	g.mu.Lock()
	defer g.mu.Unlock()

	if win {
		g.session.WinCount++
		g.session.ConsecutiveLosses = 0
	} else {
		g.session.LossCount++
		g.session.ConsecutiveLosses++
	}
	g.session.DailyPnL += pnl

	g.log.Info("Outcome reported",
		"win", win, "pnl", pnl,
		"consecutive_losses", g.session.ConsecutiveLosses)

	return g.session
}

// EmergencyStop zeroes the daily cap, halting approvals until the
// next daily reset.
func (g *Gate) EmergencyStop() TradingSession {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.session.DailyCap = 0
	g.log.Warn("Emergency stop engaged")
	return g.session
}

// ResetDaily clears the daily counters and restores the configured
// trade cap.
func (g *Gate) ResetDaily() TradingSession {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.session = TradingSession{
		DailyCap:  g.cfg.MaxDailyTrades,
		StartedAt: g.now(),
	}
	g.log.Info("Daily session reset")
	return g.session
}

func recommendation(q signal.Quality, d signal.Direction) string {
	switch q {
	case signal.QualityExcellent:
		return fmt.Sprintf("STRONG TRADE %s", d)
	case signal.QualityGood:
		return fmt.Sprintf("TRADE %s", d)
	case signal.QualityFair:
		return fmt.Sprintf("WEAK TRADE %s, reduce stake", d)
	default:
		return "DO NOT TRADE"
	}
}

func riskAssessment(risk, confidence float64) string {
	level := "Low"
	if risk > 0.7 {
		level = "High"
	} else if risk > 0.4 {
		level = "Medium"
	}
	return fmt.Sprintf("%s risk (%.2f), %s signal", level, risk, signal.SignalStrength(confidence))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
