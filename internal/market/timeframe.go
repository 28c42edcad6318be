package market

import (
	"sort"
	"time"
)

// Standard timeframe identifiers used across the pipeline.
const (
	Timeframe1m  = "1m"
	Timeframe5m  = "5m"
	Timeframe15m = "15m"
	Timeframe1h  = "1h"
)

// TimeframeSet holds candle series keyed by timeframe identifier.
// Series are ordered ascending by timestamp.
type TimeframeSet map[string][]Candle

// Primary returns the preferred decision timeframe: 1m if present,
// otherwise the shortest available timeframe.
func (ts TimeframeSet) Primary() []Candle {
	if candles, ok := ts[Timeframe1m]; ok && len(candles) > 0 {
		return candles
	}
	for _, tf := range []string{Timeframe5m, Timeframe15m, Timeframe1h} {
		if candles, ok := ts[tf]; ok && len(candles) > 0 {
			return candles
		}
	}
	// Fall back to any non-empty series, deterministically.
	keys := make([]string, 0, len(ts))
	for k, v := range ts {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return ts[keys[0]]
}

// Timeframes returns the sorted list of timeframe identifiers with data.
func (ts TimeframeSet) Timeframes() []string {
	keys := make([]string, 0, len(ts))
	for k, v := range ts {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// LatestTime returns the newest candle timestamp across all timeframes.
func (ts TimeframeSet) LatestTime() time.Time {
	var latest time.Time
	for _, candles := range ts {
		if len(candles) == 0 {
			continue
		}
		t := candles[len(candles)-1].Time()
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}

// Age returns how old the freshest candle is relative to now.
func (ts TimeframeSet) Age(now time.Time) time.Duration {
	latest := ts.LatestTime()
	if latest.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(latest)
}
