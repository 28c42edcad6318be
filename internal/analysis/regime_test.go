package analysis

import (
	"math"
	"testing"

	"signal-sniper/internal/market"
)

func trendingCandles(n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		base := 100 + float64(i)*2
		out[i] = market.Candle{Open: base, High: base + 3, Low: base - 1, Close: base + 2, Volume: 1000}
	}
	return out
}

func rangingCandles(n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		base := 100 + math.Sin(float64(i))*0.5
		out[i] = market.Candle{Open: base, High: base + 0.5, Low: base - 0.5, Close: base, Volume: 1000}
	}
	return out
}

func TestRegimeTrending(t *testing.T) {
	detector := NewRegimeDetector()
	if regime := detector.Detect(trendingCandles(80)); regime != RegimeTrending {
		t.Errorf("Expected TRENDING regime for sustained uptrend, got %s", regime)
	}
}

func TestRegimeRanging(t *testing.T) {
	detector := NewRegimeDetector()
	if regime := detector.Detect(rangingCandles(80)); regime != RegimeRanging {
		t.Errorf("Expected RANGING regime for oscillating prices, got %s", regime)
	}
}

func TestRegimeVolatile(t *testing.T) {
	detector := NewRegimeDetector()

	candles := rangingCandles(80)
	// Blow out the final bar's range well past the recent ATR average.
	last := &candles[len(candles)-1]
	last.High = last.Open + 20
	last.Low = last.Open - 20
	last.Close = last.Open + 15

	if regime := detector.Detect(candles); regime != RegimeVolatile {
		t.Errorf("Expected VOLATILE regime after range expansion, got %s", regime)
	}
}

func TestRegimeLowVolume(t *testing.T) {
	detector := NewRegimeDetector()

	candles := rangingCandles(80)
	candles[len(candles)-1].Volume = 100 // well under half the average

	if regime := detector.Detect(candles); regime != RegimeLowVolume {
		t.Errorf("Expected LOW_VOLUME regime for thin participation, got %s", regime)
	}
}

func TestRegimeInsufficientHistory(t *testing.T) {
	detector := NewRegimeDetector()
	if regime := detector.Detect(trendingCandles(10)); regime != RegimeBalanced {
		t.Errorf("Expected BALANCED fallback for short history, got %s", regime)
	}
}
