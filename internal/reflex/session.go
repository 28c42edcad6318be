package reflex

import (
	"time"
)

// TradingSession is the only cross-call mutable state in the pipeline.
// It is a plain value owned by the Gate and copied out on read, so
// tests can inject arbitrary snapshots.
type TradingSession struct {
	TradesExecuted    int       `json:"trades_executed"`
	ConsecutiveLosses int       `json:"consecutive_losses"`
	WinCount          int       `json:"win_count"`
	LossCount         int       `json:"loss_count"`
	DailyPnL          float64   `json:"daily_pnl"`
	LastTradeTime     time.Time `json:"last_trade_time"`

	// DailyCap is the effective daily trade limit. An emergency stop
	// zeroes it; a daily reset restores the configured value.
	DailyCap int `json:"daily_cap"`

	StartedAt time.Time `json:"started_at"`
}

// WinRate returns the fraction of reported outcomes that were wins.
func (s TradingSession) WinRate() float64 {
	total := s.WinCount + s.LossCount
	if total == 0 {
		return 0
	}
	return float64(s.WinCount) / float64(total)
}

// Halted reports whether the session can accept no further trades
// today.
func (s TradingSession) Halted() bool {
	return s.TradesExecuted >= s.DailyCap
}
