// Package journal records terminal signal results and reported trade
// outcomes for audit and offline learning.
package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"signal-sniper/internal/signal"
)

// Outcome constants for reported trades.
const (
	OutcomeWin     = "WIN"
	OutcomeLoss    = "LOSS"
	OutcomePending = "PENDING"
)

// Entry is one journaled signal evaluation.
type Entry struct {
	SignalID         string    `json:"signal_id"`
	Symbol           string    `json:"symbol"`
	Outcome          string    `json:"outcome"` // COMPLETED or REJECTED
	Direction        string    `json:"direction"`
	Quality          string    `json:"quality"`
	TradeScore       float64   `json:"trade_score"`
	Confidence       float64   `json:"confidence"`
	RecommendedStake float64   `json:"recommended_stake"`
	SetupTag         string    `json:"setup_tag,omitempty"`
	RejectionCode    string    `json:"rejection_code,omitempty"`
	RejectionReason  string    `json:"rejection_reason,omitempty"`
	FallbackUsed     bool      `json:"fallback_used"`
	TradeOutcome     string    `json:"trade_outcome"`
	PnL              *float64  `json:"pnl,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// SignalRepository persists journal entries. A nil repository keeps
// the journal log-only.
type SignalRepository interface {
	CreateSignal(ctx context.Context, entry *Entry) error
	UpdateOutcome(ctx context.Context, signalID, outcome string, pnl float64) error
}

// Stats aggregates journaled counts for the health surface.
type Stats struct {
	Evaluated int     `json:"evaluated"`
	Completed int     `json:"completed"`
	Rejected  int     `json:"rejected"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Accuracy  float64 `json:"accuracy"`
}

// Journal writes structured audit records for every evaluation and
// outcome.
type Journal struct {
	mu     sync.RWMutex
	repo   SignalRepository
	logger zerolog.Logger
	stats  Stats
}

// New creates a journal. repo may be nil.
func New(repo SignalRepository, logger zerolog.Logger) *Journal {
	return &Journal{
		repo:   repo,
		logger: logger.With().Str("component", "SignalJournal").Logger(),
	}
}

// OnSignalEvaluated records a terminal pipeline result.
func (j *Journal) OnSignalEvaluated(ctx context.Context, result *signal.SignalResult) error {
	entry := &Entry{
		SignalID:         result.ID,
		Symbol:           result.Symbol,
		Outcome:          string(result.Outcome),
		Direction:        string(result.Direction),
		Quality:          string(result.SignalQuality),
		TradeScore:       result.TradeScore,
		Confidence:       result.Confidence,
		RecommendedStake: result.RecommendedStake,
		SetupTag:         result.SetupTag,
		FallbackUsed:     result.FallbackUsed,
		TradeOutcome:     OutcomePending,
		CreatedAt:        result.Timestamp,
	}
	if result.RejectionReason != nil {
		entry.RejectionCode = result.RejectionReason.Code
		entry.RejectionReason = result.RejectionReason.Reason
	}

	j.mu.Lock()
	j.stats.Evaluated++
	if result.Rejected() {
		j.stats.Rejected++
	} else {
		j.stats.Completed++
	}
	j.mu.Unlock()

	if j.repo != nil {
		if err := j.repo.CreateSignal(ctx, entry); err != nil {
			j.logger.Error().
				Err(err).
				Str("signal_id", result.ID).
				Msg("Failed to persist signal entry")
			return fmt.Errorf("failed to persist signal entry: %w", err)
		}
	}

	evt := j.logger.Info().
		Str("signal_id", result.ID).
		Str("symbol", result.Symbol).
		Str("outcome", string(result.Outcome)).
		Str("quality", string(result.SignalQuality)).
		Float64("trade_score", result.TradeScore).
		Float64("confidence", result.Confidence)
	if entry.RejectionCode != "" {
		evt = evt.Str("rejection_code", entry.RejectionCode)
	}
	evt.Msg("Signal journaled")

	return nil
}

// OnOutcomeReported records a WIN or LOSS for an earlier signal.
func (j *Journal) OnOutcomeReported(ctx context.Context, signalID string, win bool, pnl float64) error {
	outcome := OutcomeLoss
	if win {
		outcome = OutcomeWin
	}

	j.mu.Lock()
	if win {
		j.stats.Wins++
	} else {
		j.stats.Losses++
	}
	j.mu.Unlock()

	if j.repo != nil {
		if err := j.repo.UpdateOutcome(ctx, signalID, outcome, pnl); err != nil {
			j.logger.Error().
				Err(err).
				Str("signal_id", signalID).
				Msg("Failed to persist outcome")
			return fmt.Errorf("failed to persist outcome: %w", err)
		}
	}

	j.logger.Info().
		Str("signal_id", signalID).
		Str("outcome", outcome).
		Float64("pnl", pnl).
		Msg("Outcome journaled")

	return nil
}

// Stats returns a snapshot of the journaled counters.
func (j *Journal) Stats() Stats {
	j.mu.RLock()
	defer j.mu.RUnlock()

	s := j.stats
	if total := s.Wins + s.Losses; total > 0 {
		s.Accuracy = float64(s.Wins) / float64(total)
	}
	return s
}
