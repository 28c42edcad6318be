package analysis

import (
	"testing"

	"signal-sniper/internal/market"
)

// TestDetectBullishFVG tests detection of bullish Fair Value Gaps
func TestDetectBullishFVG(t *testing.T) {
	detector := NewFVGDetector(0.1, 30)

	candles := []market.Candle{
		// Candle 1: High at 100
		{Open: 95, High: 100, Low: 94, Close: 98},
		// Candle 2: Gap creator (middle candle)
		{Open: 98, High: 105, Low: 97, Close: 104},
		// Candle 3: Low at 101 (gap between 100 and 101)
		{Open: 104, High: 108, Low: 101, Close: 106},
	}

	fvgs := detector.DetectFVGs(candles)

	if len(fvgs) != 1 {
		t.Fatalf("Expected 1 FVG, got %d", len(fvgs))
	}

	fvg := fvgs[0]

	if fvg.Type != BullishFVG {
		t.Errorf("Expected BullishFVG, got %s", fvg.Type)
	}
	if fvg.BottomPrice != 100 {
		t.Errorf("Expected BottomPrice 100, got %f", fvg.BottomPrice)
	}
	if fvg.TopPrice != 101 {
		t.Errorf("Expected TopPrice 101, got %f", fvg.TopPrice)
	}
}

// TestDetectBearishFVG tests detection of bearish Fair Value Gaps
func TestDetectBearishFVG(t *testing.T) {
	detector := NewFVGDetector(0.1, 30)

	candles := []market.Candle{
		// Candle 1: Low at 100
		{Open: 105, High: 106, Low: 100, Close: 102},
		// Candle 2: Gap creator
		{Open: 102, High: 103, Low: 95, Close: 96},
		// Candle 3: High at 99 (gap between 99 and 100)
		{Open: 96, High: 99, Low: 92, Close: 94},
	}

	fvgs := detector.DetectFVGs(candles)

	if len(fvgs) != 1 {
		t.Fatalf("Expected 1 FVG, got %d", len(fvgs))
	}

	fvg := fvgs[0]

	if fvg.Type != BearishFVG {
		t.Errorf("Expected BearishFVG, got %s", fvg.Type)
	}
	if fvg.BottomPrice != 99 {
		t.Errorf("Expected BottomPrice 99, got %f", fvg.BottomPrice)
	}
	if fvg.TopPrice != 100 {
		t.Errorf("Expected TopPrice 100, got %f", fvg.TopPrice)
	}
}

// TestNoFVGDetection tests that no FVG is detected when candles overlap
func TestNoFVGDetection(t *testing.T) {
	detector := NewFVGDetector(0.1, 30)

	candles := []market.Candle{
		{Open: 95, High: 100, Low: 94, Close: 98},
		{Open: 98, High: 102, Low: 97, Close: 100},
		{Open: 100, High: 104, Low: 99, Close: 102},
	}

	if fvgs := detector.DetectFVGs(candles); len(fvgs) != 0 {
		t.Errorf("Expected 0 FVGs for overlapping candles, got %d", len(fvgs))
	}
}

// TestFVGAgeExpiry verifies that old gaps drop out while a fill does
// not remove a gap early.
func TestFVGAgeExpiry(t *testing.T) {
	detector := NewFVGDetector(0.1, 30)

	// Gap at the very start of the series.
	candles := []market.Candle{
		{Open: 95, High: 100, Low: 94, Close: 98},
		{Open: 98, High: 105, Low: 97, Close: 104},
		{Open: 104, High: 108, Low: 101, Close: 106},
	}
	// Later price falls back through the gap: the gap stays active.
	for i := 0; i < 10; i++ {
		candles = append(candles, market.Candle{Open: 99, High: 101.5, Low: 98, Close: 99.5, Volume: 1000})
	}
	if fvgs := detector.DetectFVGs(candles); len(fvgs) != 1 {
		t.Errorf("Expected gap to survive a fill within the age window, got %d gaps", len(fvgs))
	}

	// Pad beyond the age cutoff: the gap expires.
	for i := 0; i < 30; i++ {
		candles = append(candles, market.Candle{Open: 99, High: 101.5, Low: 98, Close: 99.5, Volume: 1000})
	}
	if fvgs := detector.DetectFVGs(candles); len(fvgs) != 0 {
		t.Errorf("Expected gap to expire past the age cutoff, got %d gaps", len(fvgs))
	}
}

// TestIsPriceInFVG tests price containment checks
func TestIsPriceInFVG(t *testing.T) {
	detector := NewFVGDetector(0.1, 30)

	fvg := FVG{
		Type:        BullishFVG,
		TopPrice:    105,
		BottomPrice: 100,
	}

	tests := []struct {
		price    float64
		expected bool
	}{
		{102.5, true}, // Inside FVG
		{100, true},   // At bottom
		{105, true},   // At top
		{99, false},   // Below FVG
		{106, false},  // Above FVG
	}

	for _, tt := range tests {
		if result := detector.IsPriceInFVG(tt.price, fvg); result != tt.expected {
			t.Errorf("IsPriceInFVG(%f) = %v, expected %v", tt.price, result, tt.expected)
		}
	}
}

// TestMinGapPercent tests minimum gap size filtering
func TestMinGapPercent(t *testing.T) {
	detector := NewFVGDetector(5.0, 30) // 5% minimum gap

	candles := []market.Candle{
		{Open: 100, High: 100.5, Low: 99.5, Close: 100},
		{Open: 100, High: 102, Low: 99, Close: 101},
		{Open: 101, High: 102, Low: 100.6, Close: 101.5}, // Gap of 0.1
	}

	if fvgs := detector.DetectFVGs(candles); len(fvgs) != 0 {
		t.Errorf("Expected 0 FVGs with small gap, got %d", len(fvgs))
	}
}

// BenchmarkDetectFVGs benchmarks FVG detection performance
func BenchmarkDetectFVGs(b *testing.B) {
	detector := NewFVGDetector(0.1, 30)

	candles := make([]market.Candle, 1000)
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
		detector.DetectFVGs(candles)
	}
}
