package analyst

import (
	"signal-sniper/internal/filters"
	"signal-sniper/internal/patterns"
	"signal-sniper/internal/signal"
)

// Feature keys produced by the quant stage. The recomputation reads
// these instead of raw candles so it stays an independent second
// opinion on the same snapshot.
const (
	featureRSI      = "rsi"
	featureEMARatio = "ema9_ema21_ratio"
	featureMACD     = "macd"
)

// Confluence is the analyst's independent recomputation of signal
// agreement. It deliberately uses a simpler weighting scheme than the
// filter engine so the two scores cannot fail in the same way.
type Confluence struct {
	Score          float64          `json:"score"` // 0-100
	BullishSignals int              `json:"bullish_signals"`
	BearishSignals int              `json:"bearish_signals"`
	Direction      signal.Direction `json:"direction"`
	Factors        []string         `json:"factors"`
}

// Signal weights. Extreme RSI and strong candlestick patterns count
// double.
const (
	rsiExtremeWeight     = 2
	emaAlignmentWeight   = 1
	macdSignWeight       = 1
	strongPatternWeight  = 2
	regularPatternWeight = 1
	consensusWeight      = 1

	maxFactors = 5
)

// RecomputeConfluence scores directional agreement across the quant
// feature map, the candlestick pattern summary, and the filter engine
// consensus.
func RecomputeConfluence(features map[string]float64, pats *patterns.PatternSummary, snapshot *filters.Snapshot) Confluence {
	var bullish, bearish int
	var factors []string

	if rsi, ok := features[featureRSI]; ok {
		if rsi < 30 {
			bullish += rsiExtremeWeight
			factors = append(factors, "RSI oversold condition")
		} else if rsi > 70 {
			bearish += rsiExtremeWeight
			factors = append(factors, "RSI overbought condition")
		}
	}

	if ratio, ok := features[featureEMARatio]; ok {
		if ratio > 1.001 {
			bullish += emaAlignmentWeight
			factors = append(factors, "EMA bullish alignment")
		} else if ratio < 0.999 {
			bearish += emaAlignmentWeight
			factors = append(factors, "EMA bearish alignment")
		}
	}

	if macd, ok := features[featureMACD]; ok {
		if macd > 0 {
			bullish += macdSignWeight
			factors = append(factors, "MACD positive")
		} else if macd < 0 {
			bearish += macdSignWeight
			factors = append(factors, "MACD negative")
		}
	}

	if pats != nil {
		weak := pats.Bullish - pats.StrongBullish
		bullish += pats.StrongBullish*strongPatternWeight + weak*regularPatternWeight
		if pats.StrongBullish > 0 {
			factors = append(factors, "strong bullish pattern")
		} else if pats.Bullish > 0 {
			factors = append(factors, "bullish pattern")
		}

		weak = pats.Bearish - pats.StrongBearish
		bearish += pats.StrongBearish*strongPatternWeight + weak*regularPatternWeight
		if pats.StrongBearish > 0 {
			factors = append(factors, "strong bearish pattern")
		} else if pats.Bearish > 0 {
			factors = append(factors, "bearish pattern")
		}
	}

	if snapshot != nil {
		switch snapshot.Consensus {
		case signal.DirectionUp:
			bullish += consensusWeight
			factors = append(factors, "filter consensus bullish")
		case signal.DirectionDown:
			bearish += consensusWeight
			factors = append(factors, "filter consensus bearish")
		}
	}

	total := bullish + bearish
	conf := Confluence{
		BullishSignals: bullish,
		BearishSignals: bearish,
		Direction:      signal.DirectionNeutral,
	}
	if total > 0 {
		conf.Score = float64(max(bullish, bearish)) / float64(total) * 100
	}
	if bullish > bearish {
		conf.Direction = signal.DirectionUp
	} else if bearish > bullish {
		conf.Direction = signal.DirectionDown
	}
	if len(factors) > maxFactors {
		factors = factors[:maxFactors]
	}
	conf.Factors = factors

	return conf
}

// Reason joins the top factors into the human-readable reasoning
// string carried on the validation.
func (c Confluence) Reason() string {
	if len(c.Factors) == 0 {
		return "Mixed technical signals"
	}
	top := c.Factors
	if len(top) > 3 {
		top = top[:3]
	}
	out := top[0]
	for _, f := range top[1:] {
		out += " + " + f
	}
	return out
}
