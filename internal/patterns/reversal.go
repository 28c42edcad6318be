package patterns

import "signal-sniper/internal/market"

// Two-candle and doji reversal pattern detection.

// isBullishEngulfing checks for Bullish Engulfing pattern
func (pd *PatternDetector) isBullishEngulfing(c1, c2 market.Candle) bool {
	if !c1.IsBearish() || !c2.IsBullish() {
		return false
	}

	// C2 body must completely engulf C1 body
	if c2.Open >= c1.Close || c2.Close <= c1.Open {
		return false
	}

	return true
}

// isBearishEngulfing checks for Bearish Engulfing pattern
func (pd *PatternDetector) isBearishEngulfing(c1, c2 market.Candle) bool {
	if !c1.IsBullish() || !c2.IsBearish() {
		return false
	}

	if c2.Open <= c1.Close || c2.Close >= c1.Open {
		return false
	}

	return true
}

// isDoji checks for Doji pattern (indecision)
func (pd *PatternDetector) isDoji(candle market.Candle) bool {
	r := candle.Range()
	if r == 0 {
		return false
	}

	// Doji: body is very small relative to range (< 10%)
	return (candle.Body() / r) < 0.10
}

// isDragonflyDoji checks for Dragonfly Doji (bullish)
func (pd *PatternDetector) isDragonflyDoji(candle market.Candle) bool {
	if !pd.isDoji(candle) {
		return false
	}

	r := candle.Range()
	// Long lower wick, little to no upper wick
	return candle.LowerWick() > r*0.6 && candle.UpperWick() < r*0.15
}

// isGravestoneDoji checks for Gravestone Doji (bearish)
func (pd *PatternDetector) isGravestoneDoji(candle market.Candle) bool {
	if !pd.isDoji(candle) {
		return false
	}

	r := candle.Range()
	// Long upper wick, little to no lower wick
	return candle.UpperWick() > r*0.6 && candle.LowerWick() < r*0.15
}

// isBullishHarami checks for Bullish Harami pattern
func (pd *PatternDetector) isBullishHarami(c1, c2 market.Candle) bool {
	// C1: large bearish candle
	if !c1.IsBearish() {
		return false
	}
	if c1.Body() < c1.Range()*0.6 {
		return false
	}

	// C2: small bullish candle contained within C1 body
	if !c2.IsBullish() {
		return false
	}
	if c2.Open < c1.Close || c2.Close > c1.Open {
		return false
	}

	return c2.Body() <= c1.Body()*0.5
}

// isBearishHarami checks for Bearish Harami pattern
func (pd *PatternDetector) isBearishHarami(c1, c2 market.Candle) bool {
	if !c1.IsBullish() {
		return false
	}
	if c1.Body() < c1.Range()*0.6 {
		return false
	}

	if !c2.IsBearish() {
		return false
	}
	if c2.Open > c1.Close || c2.Close < c1.Open {
		return false
	}

	return c2.Body() <= c1.Body()*0.5
}

// DetectReversalPatterns scans for two-candle and doji reversals.
func (pd *PatternDetector) DetectReversalPatterns(candles []market.Candle) []DetectedPattern {
	var patterns []DetectedPattern

	if len(candles) < 2 {
		return patterns
	}

	for i := 1; i < len(candles); i++ {
		c1, c2 := candles[i-1], candles[i]

		if pd.isBullishEngulfing(c1, c2) {
			patterns = append(patterns, DetectedPattern{
				Type:        BullishEngulfing,
				CandleIndex: i,
				Confidence:  0.75,
				Direction:   "bullish",
				Strong:      true,
			})
		}
		if pd.isBearishEngulfing(c1, c2) {
			patterns = append(patterns, DetectedPattern{
				Type:        BearishEngulfing,
				CandleIndex: i,
				Confidence:  0.75,
				Direction:   "bearish",
				Strong:      true,
			})
		}
		if pd.isBullishHarami(c1, c2) {
			patterns = append(patterns, DetectedPattern{
				Type:        BullishHarami,
				CandleIndex: i,
				Confidence:  0.68,
				Direction:   "bullish",
			})
		}
		if pd.isBearishHarami(c1, c2) {
			patterns = append(patterns, DetectedPattern{
				Type:        BearishHarami,
				CandleIndex: i,
				Confidence:  0.68,
				Direction:   "bearish",
			})
		}
	}

	for i := 0; i < len(candles); i++ {
		candle := candles[i]

		switch {
		case pd.isDragonflyDoji(candle):
			patterns = append(patterns, DetectedPattern{
				Type:        DragonflyDoji,
				CandleIndex: i,
				Confidence:  0.62,
				Direction:   "bullish",
			})
		case pd.isGravestoneDoji(candle):
			patterns = append(patterns, DetectedPattern{
				Type:        GravestoneDoji,
				CandleIndex: i,
				Confidence:  0.62,
				Direction:   "bearish",
			})
		case pd.isDoji(candle):
			patterns = append(patterns, DetectedPattern{
				Type:        Doji,
				CandleIndex: i,
				Confidence:  0.50,
				Direction:   "neutral",
			})
		}
	}

	return patterns
}
