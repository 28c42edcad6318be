package patterns

import "signal-sniper/internal/market"

// PatternType represents different candlestick patterns
type PatternType string

const (
	MorningStar        PatternType = "morning_star"
	EveningStar        PatternType = "evening_star"
	ShootingStar       PatternType = "shooting_star"
	Hammer             PatternType = "hammer"
	HangingMan         PatternType = "hanging_man"
	BullishEngulfing   PatternType = "bullish_engulfing"
	BearishEngulfing   PatternType = "bearish_engulfing"
	Doji               PatternType = "doji"
	DragonflyDoji      PatternType = "dragonfly_doji"
	GravestoneDoji     PatternType = "gravestone_doji"
	BullishHarami      PatternType = "bullish_harami"
	BearishHarami      PatternType = "bearish_harami"
	ThreeWhiteSoldiers PatternType = "three_white_soldiers"
	ThreeBlackCrows    PatternType = "three_black_crows"
)

// DetectedPattern represents a detected candlestick pattern
type DetectedPattern struct {
	Type        PatternType
	CandleIndex int
	Confidence  float64 // 0.0 to 1.0
	Direction   string  // "bullish", "bearish" or "neutral"
	Strong      bool    // Multi-candle confirmation patterns
}

// PatternSummary aggregates recent pattern evidence for signal scoring.
type PatternSummary struct {
	Bullish       int
	Bearish       int
	StrongBullish int
	StrongBearish int
	Names         []string
}

// PatternDetector detects candlestick patterns
type PatternDetector struct {
	minBodySize float64 // Minimum candle body size (% of price)
}

// NewPatternDetector creates a new pattern detector
func NewPatternDetector(minBodySize float64) *PatternDetector {
	if minBodySize <= 0 {
		minBodySize = 0.5
	}
	return &PatternDetector{minBodySize: minBodySize}
}

// DetectPatterns scans the candles for all supported patterns.
func (pd *PatternDetector) DetectPatterns(candles []market.Candle) []DetectedPattern {
	var patterns []DetectedPattern

	if len(candles) < 3 {
		return patterns
	}

	// Three-candle patterns
	for i := 2; i < len(candles); i++ {
		c1, c2, c3 := candles[i-2], candles[i-1], candles[i]

		if pd.isMorningStar(c1, c2, c3) {
			patterns = append(patterns, DetectedPattern{
				Type:        MorningStar,
				CandleIndex: i,
				Confidence:  pd.starConfidence(c1, c3),
				Direction:   "bullish",
				Strong:      true,
			})
		}
		if pd.isEveningStar(c1, c2, c3) {
			patterns = append(patterns, DetectedPattern{
				Type:        EveningStar,
				CandleIndex: i,
				Confidence:  pd.starConfidence(c1, c3),
				Direction:   "bearish",
				Strong:      true,
			})
		}
		if pd.isThreeWhiteSoldiers(c1, c2, c3) {
			patterns = append(patterns, DetectedPattern{
				Type:        ThreeWhiteSoldiers,
				CandleIndex: i,
				Confidence:  0.8,
				Direction:   "bullish",
				Strong:      true,
			})
		}
		if pd.isThreeBlackCrows(c1, c2, c3) {
			patterns = append(patterns, DetectedPattern{
				Type:        ThreeBlackCrows,
				CandleIndex: i,
				Confidence:  0.8,
				Direction:   "bearish",
				Strong:      true,
			})
		}
	}

	patterns = append(patterns, pd.DetectReversalPatterns(candles)...)

	// Single wick-rejection patterns need the previous candle for
	// trend context.
	for i := 0; i < len(candles); i++ {
		candle := candles[i]
		var prev *market.Candle
		if i > 0 {
			prev = &candles[i-1]
		}

		if pd.isShootingStar(candle, prev) {
			patterns = append(patterns, DetectedPattern{
				Type:        ShootingStar,
				CandleIndex: i,
				Confidence:  0.65,
				Direction:   "bearish",
			})
		}
		if pd.isHammer(candle, prev) {
			patterns = append(patterns, DetectedPattern{
				Type:        Hammer,
				CandleIndex: i,
				Confidence:  0.65,
				Direction:   "bullish",
			})
		}
		if pd.isHangingMan(candle, prev) {
			patterns = append(patterns, DetectedPattern{
				Type:        HangingMan,
				CandleIndex: i,
				Confidence:  0.6,
				Direction:   "bearish",
			})
		}
	}

	return patterns
}

// Summarize counts pattern evidence within the trailing lookback bars.
func (pd *PatternDetector) Summarize(candles []market.Candle, lookback int) PatternSummary {
	summary := PatternSummary{}
	if len(candles) == 0 || lookback <= 0 {
		return summary
	}

	cutoff := len(candles) - 1 - lookback
	for _, p := range pd.DetectPatterns(candles) {
		if p.CandleIndex <= cutoff {
			continue
		}
		switch p.Direction {
		case "bullish":
			summary.Bullish++
			if p.Strong {
				summary.StrongBullish++
			}
		case "bearish":
			summary.Bearish++
			if p.Strong {
				summary.StrongBearish++
			}
		}
		summary.Names = append(summary.Names, string(p.Type))
	}

	return summary
}

// isMorningStar checks for Morning Star pattern (bullish reversal)
func (pd *PatternDetector) isMorningStar(c1, c2, c3 market.Candle) bool {
	// Candle 1: long bearish candle
	if !c1.IsBearish() {
		return false
	}
	if c1.Body() < c1.Range()*0.6 {
		return false
	}

	// Candle 2: small body (indecision)
	if c2.Body() > c1.Body()*0.4 {
		return false
	}

	// Candle 3: long bullish candle
	if !c3.IsBullish() {
		return false
	}
	if c3.Body() < c3.Range()*0.6 {
		return false
	}

	// C3 should close above midpoint of C1
	midpoint := (c1.Open + c1.Close) / 2
	return c3.Close >= midpoint
}

// isEveningStar checks for Evening Star pattern (bearish reversal)
func (pd *PatternDetector) isEveningStar(c1, c2, c3 market.Candle) bool {
	if !c1.IsBullish() {
		return false
	}
	if c1.Body() < c1.Range()*0.6 {
		return false
	}

	if c2.Body() > c1.Body()*0.4 {
		return false
	}

	if !c3.IsBearish() {
		return false
	}
	if c3.Body() < c3.Range()*0.6 {
		return false
	}

	midpoint := (c1.Open + c1.Close) / 2
	return c3.Close <= midpoint
}

// isThreeWhiteSoldiers checks for three consecutive strong bullish
// candles, each closing above the previous close.
func (pd *PatternDetector) isThreeWhiteSoldiers(c1, c2, c3 market.Candle) bool {
	for _, c := range []market.Candle{c1, c2, c3} {
		if !c.IsBullish() || c.Body() < c.Range()*0.5 {
			return false
		}
	}
	return c2.Close > c1.Close && c3.Close > c2.Close
}

// isThreeBlackCrows is the bearish mirror of three white soldiers.
func (pd *PatternDetector) isThreeBlackCrows(c1, c2, c3 market.Candle) bool {
	for _, c := range []market.Candle{c1, c2, c3} {
		if !c.IsBearish() || c.Body() < c.Range()*0.5 {
			return false
		}
	}
	return c2.Close < c1.Close && c3.Close < c2.Close
}

// isShootingStar checks for Shooting Star pattern (bearish reversal)
func (pd *PatternDetector) isShootingStar(candle market.Candle, prev *market.Candle) bool {
	// Long upper wick (at least 2x body)
	if candle.UpperWick() < candle.Body()*2 {
		return false
	}

	// Small or no lower wick
	if candle.LowerWick() > candle.Body()*0.3 {
		return false
	}

	// Should appear after an up candle
	if prev != nil && !prev.IsBullish() {
		return false
	}

	return true
}

// isHammer checks for Hammer pattern (bullish reversal)
func (pd *PatternDetector) isHammer(candle market.Candle, prev *market.Candle) bool {
	if candle.LowerWick() < candle.Body()*2 {
		return false
	}

	if candle.UpperWick() > candle.Body()*0.3 {
		return false
	}

	// Should appear after a down candle
	if prev != nil && !prev.IsBearish() {
		return false
	}

	return true
}

// isHangingMan has the hammer's shape but appears after an up candle.
func (pd *PatternDetector) isHangingMan(candle market.Candle, prev *market.Candle) bool {
	if candle.LowerWick() < candle.Body()*2 {
		return false
	}
	if candle.UpperWick() > candle.Body()*0.3 {
		return false
	}
	if prev == nil || !prev.IsBullish() {
		return false
	}
	return true
}

// starConfidence scores star patterns by the strength of the
// confirming candle.
func (pd *PatternDetector) starConfidence(c1, c3 market.Candle) float64 {
	confidence := 0.7
	if c3.Body() > c1.Body()*1.2 {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
