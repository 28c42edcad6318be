package market

import (
	"math"
	"time"
)

// Candle represents a single OHLCV candle. Timestamp is the candle open
// time in milliseconds. Candles are immutable once recorded.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports whether the candle closed below its open.
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// Body returns the absolute body size.
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the full high-low range.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// UpperWick returns the distance from the body top to the high.
func (c Candle) UpperWick() float64 {
	return c.High - math.Max(c.Open, c.Close)
}

// LowerWick returns the distance from the low to the body bottom.
func (c Candle) LowerWick() float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

// Time returns the candle open time.
func (c Candle) Time() time.Time {
	return time.Unix(c.Timestamp/1000, (c.Timestamp%1000)*int64(time.Millisecond))
}

// Closes extracts the close series from a candle slice.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high series from a candle slice.
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low series from a candle slice.
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the volume series from a candle slice.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty series.
func LastClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}
