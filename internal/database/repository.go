package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"signal-sniper/internal/journal"
)

// Repository provides data access methods
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck performs a database health check
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// ============================================================================
// SIGNALS
// ============================================================================

// CreateSignal inserts a journal entry for a terminal signal result
func (r *Repository) CreateSignal(ctx context.Context, entry *journal.Entry) error {
	query := `
		INSERT INTO signals (id, symbol, outcome, direction, quality, trade_score, confidence,
		                     recommended_stake, setup_tag, rejection_code, rejection_reason,
		                     fallback_used, trade_outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Pool.Exec(
		ctx, query,
		entry.SignalID, entry.Symbol, entry.Outcome, entry.Direction, entry.Quality,
		entry.TradeScore, entry.Confidence, entry.RecommendedStake, entry.SetupTag,
		entry.RejectionCode, entry.RejectionReason, entry.FallbackUsed,
		entry.TradeOutcome, entry.CreatedAt,
	)
	return err
}

// UpdateOutcome records the reported WIN/LOSS for a signal
func (r *Repository) UpdateOutcome(ctx context.Context, signalID, outcome string, pnl float64) error {
	query := `
		UPDATE signals
		SET trade_outcome = $2, pnl = $3
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, signalID, outcome, pnl)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("signal %s not found", signalID)
	}
	return nil
}

// GetSignalByID retrieves a journaled signal
func (r *Repository) GetSignalByID(ctx context.Context, id string) (*journal.Entry, error) {
	query := `
		SELECT id, symbol, outcome, direction, quality, trade_score, confidence,
		       recommended_stake, setup_tag, rejection_code, rejection_reason,
		       fallback_used, trade_outcome, pnl, created_at
		FROM signals
		WHERE id = $1
	`
	entry := &journal.Entry{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&entry.SignalID, &entry.Symbol, &entry.Outcome, &entry.Direction, &entry.Quality,
		&entry.TradeScore, &entry.Confidence, &entry.RecommendedStake, &entry.SetupTag,
		&entry.RejectionCode, &entry.RejectionReason, &entry.FallbackUsed,
		&entry.TradeOutcome, &entry.PnL, &entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListRecentSignals returns the most recent journal entries
func (r *Repository) ListRecentSignals(ctx context.Context, limit int) ([]*journal.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, symbol, outcome, direction, quality, trade_score, confidence,
		       recommended_stake, setup_tag, rejection_code, rejection_reason,
		       fallback_used, trade_outcome, pnl, created_at
		FROM signals
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*journal.Entry
	for rows.Next() {
		entry := &journal.Entry{}
		if err := rows.Scan(
			&entry.SignalID, &entry.Symbol, &entry.Outcome, &entry.Direction, &entry.Quality,
			&entry.TradeScore, &entry.Confidence, &entry.RecommendedStake, &entry.SetupTag,
			&entry.RejectionCode, &entry.RejectionReason, &entry.FallbackUsed,
			&entry.TradeOutcome, &entry.PnL, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SignalStats aggregates journaled signal counts
type SignalStats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rejected  int     `json:"rejected"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	WinRate   float64 `json:"win_rate"`
}

// GetSignalStats computes aggregate statistics across all signals
func (r *Repository) GetSignalStats(ctx context.Context) (*SignalStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'COMPLETED'),
			COUNT(*) FILTER (WHERE outcome = 'REJECTED'),
			COUNT(*) FILTER (WHERE trade_outcome = 'WIN'),
			COUNT(*) FILTER (WHERE trade_outcome = 'LOSS')
		FROM signals
	`
	stats := &SignalStats{}
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&stats.Total, &stats.Completed, &stats.Rejected, &stats.Wins, &stats.Losses,
	)
	if err != nil {
		return nil, err
	}
	if resolved := stats.Wins + stats.Losses; resolved > 0 {
		stats.WinRate = float64(stats.Wins) / float64(resolved)
	}
	return stats, nil
}

// ============================================================================
// OPTIMIZER RUNS
// ============================================================================

// CreateOptimizerRun records a completed optimization pass
func (r *Repository) CreateOptimizerRun(ctx context.Context, evaluated int, parameters, scores any, runAt time.Time) error {
	paramsJSON, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	query := `
		INSERT INTO optimizer_runs (evaluated, parameters, scores, run_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.Pool.Exec(ctx, query, evaluated, paramsJSON, scoresJSON, runAt)
	return err
}

// ============================================================================
// OPERATORS
// ============================================================================

// Operator is an API account row
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetOperatorByUsername fetches an operator account, nil when absent
func (r *Repository) GetOperatorByUsername(ctx context.Context, username string) (*Operator, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM operators
		WHERE username = $1
	`
	op := &Operator{}
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&op.ID, &op.Username, &op.PasswordHash, &op.Role, &op.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// CreateOperator inserts an operator account
func (r *Repository) CreateOperator(ctx context.Context, username, passwordHash, role string) error {
	query := `
		INSERT INTO operators (username, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`
	_, err := r.db.Pool.Exec(ctx, query, username, passwordHash, role)
	return err
}
