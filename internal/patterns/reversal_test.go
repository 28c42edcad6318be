package patterns

import (
	"testing"

	"signal-sniper/internal/market"
)

// TestBullishEngulfing tests Bullish Engulfing pattern detection
func TestBullishEngulfing(t *testing.T) {
	detector := NewPatternDetector(0.5)

	// Valid Bullish Engulfing
	c1 := market.Candle{Open: 100, High: 102, Low: 98, Close: 99}  // Bearish
	c2 := market.Candle{Open: 98, High: 105, Low: 97, Close: 104} // Bullish engulfing

	if !detector.isBullishEngulfing(c1, c2) {
		t.Error("Should detect valid Bullish Engulfing pattern")
	}

	// Invalid - C1 not bearish
	c1Invalid := market.Candle{Open: 99, High: 102, Low: 98, Close: 100}
	if detector.isBullishEngulfing(c1Invalid, c2) {
		t.Error("Should NOT detect pattern when C1 is not bearish")
	}

	// Invalid - C2 doesn't engulf C1
	c2Invalid := market.Candle{Open: 99, High: 101, Low: 98, Close: 100}
	if detector.isBullishEngulfing(c1, c2Invalid) {
		t.Error("Should NOT detect pattern when C2 doesn't engulf C1")
	}
}

// TestBearishEngulfing tests Bearish Engulfing pattern detection
func TestBearishEngulfing(t *testing.T) {
	detector := NewPatternDetector(0.5)

	c1 := market.Candle{Open: 99, High: 102, Low: 98, Close: 100}  // Bullish
	c2 := market.Candle{Open: 101, High: 103, Low: 95, Close: 96} // Bearish engulfing

	if !detector.isBearishEngulfing(c1, c2) {
		t.Error("Should detect valid Bearish Engulfing pattern")
	}
}

// TestDoji tests Doji pattern detection
func TestDoji(t *testing.T) {
	detector := NewPatternDetector(0.5)

	// Valid Doji - open and close nearly same
	doji := market.Candle{Open: 100, High: 102, Low: 98, Close: 100.2}
	if !detector.isDoji(doji) {
		t.Error("Should detect valid Doji pattern")
	}

	// Invalid - large body
	notDoji := market.Candle{Open: 100, High: 110, Low: 98, Close: 108}
	if detector.isDoji(notDoji) {
		t.Error("Should NOT detect Doji with large body")
	}
}

// TestDragonflyDoji tests Dragonfly Doji pattern
func TestDragonflyDoji(t *testing.T) {
	detector := NewPatternDetector(0.5)

	// Valid Dragonfly - long lower wick, small body at top
	dragonfly := market.Candle{Open: 100, High: 100.5, Low: 92, Close: 100}
	if !detector.isDragonflyDoji(dragonfly) {
		t.Error("Should detect valid Dragonfly Doji")
	}

	// Invalid - has upper wick
	notDragonfly := market.Candle{Open: 100, High: 105, Low: 92, Close: 100}
	if detector.isDragonflyDoji(notDragonfly) {
		t.Error("Should NOT detect Dragonfly with upper wick")
	}
}

// TestGravestoneDoji tests Gravestone Doji pattern
func TestGravestoneDoji(t *testing.T) {
	detector := NewPatternDetector(0.5)

	// Valid Gravestone - long upper wick, small body at bottom
	gravestone := market.Candle{Open: 100, High: 108, Low: 99.5, Close: 100}
	if !detector.isGravestoneDoji(gravestone) {
		t.Error("Should detect valid Gravestone Doji")
	}
}

// TestBullishHarami tests Bullish Harami pattern
func TestBullishHarami(t *testing.T) {
	detector := NewPatternDetector(0.5)

	// Valid Bullish Harami
	c1 := market.Candle{Open: 105, High: 106, Low: 95, Close: 96} // Large bearish
	c2 := market.Candle{Open: 98, High: 100, Low: 97, Close: 99}  // Small bullish inside C1

	if !detector.isBullishHarami(c1, c2) {
		t.Error("Should detect valid Bullish Harami")
	}

	// Invalid - C2 too large
	c2Large := market.Candle{Open: 96, High: 104, Low: 95, Close: 103}
	if detector.isBullishHarami(c1, c2Large) {
		t.Error("Should NOT detect Harami when C2 is too large")
	}
}

// TestBearishHarami tests Bearish Harami pattern
func TestBearishHarami(t *testing.T) {
	detector := NewPatternDetector(0.5)

	c1 := market.Candle{Open: 96, High: 106, Low: 95, Close: 105}  // Large bullish
	c2 := market.Candle{Open: 103, High: 104, Low: 101, Close: 102} // Small bearish inside

	if !detector.isBearishHarami(c1, c2) {
		t.Error("Should detect valid Bearish Harami")
	}
}

// TestHangingMan tests Hanging Man pattern
func TestHangingMan(t *testing.T) {
	detector := NewPatternDetector(0.5)

	// Valid Hanging Man - appears after an up candle
	prev := market.Candle{Open: 95, High: 100, Low: 94, Close: 99}
	hangingMan := market.Candle{Open: 100, High: 100.6, Low: 92, Close: 100.5}

	if !detector.isHangingMan(hangingMan, &prev) {
		t.Error("Should detect valid Hanging Man after uptrend")
	}

	// Invalid - appears after a down candle
	prevBearish := market.Candle{Open: 100, High: 101, Low: 95, Close: 96}
	if detector.isHangingMan(hangingMan, &prevBearish) {
		t.Error("Should NOT detect Hanging Man after downtrend")
	}
}

// TestDetectReversalPatterns tests comprehensive reversal detection
func TestDetectReversalPatterns(t *testing.T) {
	detector := NewPatternDetector(0.5)

	candles := []market.Candle{
		{Open: 100, High: 105, Low: 99, Close: 104}, // Bullish
		{Open: 104, High: 106, Low: 98, Close: 99},  // Bearish
		{Open: 98, High: 106, Low: 97, Close: 105},  // Bullish Engulfing
	}

	patterns := detector.DetectReversalPatterns(candles)

	found := false
	for _, p := range patterns {
		if p.Type == BullishEngulfing {
			found = true
			if p.Direction != "bullish" {
				t.Error("Bullish Engulfing should have bullish direction")
			}
			if !p.Strong {
				t.Error("Engulfing should count as a strong pattern")
			}
			if p.Confidence <= 0 || p.Confidence > 1 {
				t.Error("Confidence should be between 0 and 1")
			}
		}
	}

	if !found {
		t.Error("Should detect Bullish Engulfing in test candles")
	}
}

// TestThreeWhiteSoldiers tests the three-candle continuation reversal
func TestThreeWhiteSoldiers(t *testing.T) {
	detector := NewPatternDetector(0.5)

	candles := []market.Candle{
		{Open: 100, High: 103, Low: 99.5, Close: 102.5},
		{Open: 102, High: 105.5, Low: 101.5, Close: 105},
		{Open: 104.5, High: 108, Low: 104, Close: 107.5},
	}

	patterns := detector.DetectPatterns(candles)

	found := false
	for _, p := range patterns {
		if p.Type == ThreeWhiteSoldiers {
			found = true
			if p.Direction != "bullish" || !p.Strong {
				t.Error("Three white soldiers should be strong bullish")
			}
		}
	}
	if !found {
		t.Error("Should detect Three White Soldiers")
	}
}

// TestSummarizeCountsRecentOnly verifies the lookback cutoff.
func TestSummarizeCountsRecentOnly(t *testing.T) {
	detector := NewPatternDetector(0.5)

	candles := []market.Candle{
		{Open: 100, High: 105, Low: 99, Close: 104}, // Bullish
		{Open: 104, High: 106, Low: 98, Close: 99},  // Bearish
		{Open: 98, High: 106, Low: 97, Close: 105},  // Bullish Engulfing at index 2
	}
	// Pad with neutral-ish drifting candles so the engulfing falls
	// outside a short lookback.
	for i := 0; i < 10; i++ {
		base := 103 + float64(i)*0.1
		candles = append(candles, market.Candle{Open: base, High: base + 2, Low: base - 2, Close: base + 0.3})
	}

	wide := detector.Summarize(candles, len(candles))
	if wide.StrongBullish == 0 {
		t.Error("Wide lookback should include the engulfing pattern")
	}

	narrow := detector.Summarize(candles, 3)
	if narrow.StrongBullish != 0 {
		t.Errorf("Narrow lookback should exclude the old engulfing, got %d strong bullish", narrow.StrongBullish)
	}
}

// BenchmarkReversalPatternDetection benchmarks pattern detection performance
func BenchmarkReversalPatternDetection(b *testing.B) {
	detector := NewPatternDetector(0.5)

	candles := make([]market.Candle, 100)
	for i := range candles {
		candles[i] = market.Candle{
			Open:  float64(100 + i),
			High:  float64(105 + i),
			Low:   float64(95 + i),
			Close: float64(102 + i),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		detector.DetectReversalPatterns(candles)
	}
}
