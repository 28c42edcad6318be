package analysis

import "signal-sniper/internal/market"

// TrendDirection represents market trend
type TrendDirection string

const (
	TrendBullish  TrendDirection = "bullish"
	TrendBearish  TrendDirection = "bearish"
	TrendSideways TrendDirection = "sideways"
)

// MarketStructure represents analyzed market conditions
type MarketStructure struct {
	Trend            TrendDirection
	TrendStrength    float64 // 0.0 to 1.0
	HigherHighs      int
	HigherLows       int
	LowerHighs       int
	LowerLows        int
	SwingHighs       []SwingPoint
	SwingLows        []SwingPoint
	SupportLevels    []float64
	ResistanceLevels []float64
}

// SwingPoint represents a significant price level
type SwingPoint struct {
	Price       float64
	CandleIndex int
	Type        string // "high" or "low"
}

// PivotLevels holds classic floor-trader pivots computed from the
// previous session's range.
type PivotLevels struct {
	Pivot float64
	R1    float64
	R2    float64
	S1    float64
	S2    float64
}

// StructureAnalyzer analyzes market trend and structure
type StructureAnalyzer struct {
	swingLookback int // Candles on each side of a swing point
}

// NewStructureAnalyzer creates a new structure analyzer
func NewStructureAnalyzer(swingLookback int) *StructureAnalyzer {
	if swingLookback <= 0 {
		swingLookback = 5
	}
	return &StructureAnalyzer{swingLookback: swingLookback}
}

// AnalyzeStructure performs market structure analysis over the candles.
// Returns nil when the history is too short for swing detection.
func (sa *StructureAnalyzer) AnalyzeStructure(candles []market.Candle) *MarketStructure {
	if len(candles) < sa.swingLookback*2 {
		return nil
	}

	structure := &MarketStructure{
		SwingHighs: sa.findSwingHighs(candles),
		SwingLows:  sa.findSwingLows(candles),
	}

	structure.HigherHighs, structure.LowerHighs = countSequence(structure.SwingHighs)
	structure.HigherLows, structure.LowerLows = countSequence(structure.SwingLows)

	structure.Trend = sa.determineTrend(structure)
	structure.TrendStrength = sa.trendStrength(structure)

	structure.SupportLevels = clusterLevels(structure.SwingLows)
	structure.ResistanceLevels = clusterLevels(structure.SwingHighs)

	return structure
}

func (sa *StructureAnalyzer) findSwingHighs(candles []market.Candle) []SwingPoint {
	var swings []SwingPoint

	for i := sa.swingLookback; i < len(candles)-sa.swingLookback; i++ {
		isSwing := true
		high := candles[i].High

		for j := i - sa.swingLookback; j <= i+sa.swingLookback; j++ {
			if j != i && candles[j].High >= high {
				isSwing = false
				break
			}
		}

		if isSwing {
			swings = append(swings, SwingPoint{Price: high, CandleIndex: i, Type: "high"})
		}
	}

	return swings
}

func (sa *StructureAnalyzer) findSwingLows(candles []market.Candle) []SwingPoint {
	var swings []SwingPoint

	for i := sa.swingLookback; i < len(candles)-sa.swingLookback; i++ {
		isSwing := true
		low := candles[i].Low

		for j := i - sa.swingLookback; j <= i+sa.swingLookback; j++ {
			if j != i && candles[j].Low <= low {
				isSwing = false
				break
			}
		}

		if isSwing {
			swings = append(swings, SwingPoint{Price: low, CandleIndex: i, Type: "low"})
		}
	}

	return swings
}

// countSequence counts rising and falling transitions between
// consecutive swing points.
func countSequence(swings []SwingPoint) (higher, lower int) {
	for i := 1; i < len(swings); i++ {
		if swings[i].Price > swings[i-1].Price {
			higher++
		} else if swings[i].Price < swings[i-1].Price {
			lower++
		}
	}
	return higher, lower
}

func (sa *StructureAnalyzer) determineTrend(structure *MarketStructure) TrendDirection {
	// Bullish: higher highs AND higher lows dominate
	if structure.HigherHighs > 0 && structure.HigherLows > 0 {
		if structure.HigherHighs >= structure.LowerHighs &&
			structure.HigherLows >= structure.LowerLows {
			return TrendBullish
		}
	}

	// Bearish: lower highs AND lower lows dominate
	if structure.LowerHighs > 0 && structure.LowerLows > 0 {
		if structure.LowerHighs >= structure.HigherHighs &&
			structure.LowerLows >= structure.HigherLows {
			return TrendBearish
		}
	}

	return TrendSideways
}

func (sa *StructureAnalyzer) trendStrength(structure *MarketStructure) float64 {
	total := structure.HigherHighs + structure.HigherLows +
		structure.LowerHighs + structure.LowerLows
	if total == 0 {
		return 0.0
	}

	switch structure.Trend {
	case TrendBullish:
		return float64(structure.HigherHighs+structure.HigherLows) / float64(total)
	case TrendBearish:
		return float64(structure.LowerHighs+structure.LowerLows) / float64(total)
	}
	return 0.3
}

// clusterLevels merges swing prices within 1% of each other into
// single support/resistance levels.
func clusterLevels(swings []SwingPoint) []float64 {
	if len(swings) < 2 {
		return nil
	}

	var levels []float64
	tolerance := 0.01

	for _, swing := range swings {
		found := false
		for i, level := range levels {
			if level > 0 && abs(swing.Price-level)/level < tolerance {
				levels[i] = (level + swing.Price) / 2
				found = true
				break
			}
		}
		if !found {
			levels = append(levels, swing.Price)
		}
	}

	return levels
}

// IsPriceAtSupport checks if current price is near a support level
func (sa *StructureAnalyzer) IsPriceAtSupport(price float64, supports []float64, tolerance float64) bool {
	for _, support := range supports {
		if support > 0 && abs(price-support)/support < tolerance {
			return true
		}
	}
	return false
}

// IsPriceAtResistance checks if current price is near a resistance level
func (sa *StructureAnalyzer) IsPriceAtResistance(price float64, resistances []float64, tolerance float64) bool {
	for _, resistance := range resistances {
		if resistance > 0 && abs(price-resistance)/resistance < tolerance {
			return true
		}
	}
	return false
}

// ComputePivots derives classic pivot levels from the range of the
// supplied candles, typically the trailing session.
func ComputePivots(candles []market.Candle) *PivotLevels {
	if len(candles) == 0 {
		return nil
	}

	high := candles[0].High
	low := candles[0].Low
	for _, c := range candles[1:] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	close := candles[len(candles)-1].Close

	pivot := (high + low + close) / 3
	return &PivotLevels{
		Pivot: pivot,
		R1:    2*pivot - low,
		R2:    pivot + (high - low),
		S1:    2*pivot - high,
		S2:    pivot - (high - low),
	}
}
