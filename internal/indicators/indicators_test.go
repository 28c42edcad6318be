package indicators

import (
	"math"
	"testing"

	"signal-sniper/internal/market"
)

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func fallingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 200 - float64(i)
	}
	return out
}

// TestRSIMonotonicSeries verifies RSI extremes on one-way price moves.
func TestRSIMonotonicSeries(t *testing.T) {
	if rsi := RSI(risingCloses(30), 14); rsi != 100.0 {
		t.Errorf("Expected RSI 100 for strictly rising closes, got %f", rsi)
	}
	if rsi := RSI(fallingCloses(30), 14); rsi != 0.0 {
		t.Errorf("Expected RSI 0 for strictly falling closes, got %f", rsi)
	}
}

// TestRSIInsufficientData verifies the neutral default.
func TestRSIInsufficientData(t *testing.T) {
	if rsi := RSI(risingCloses(5), 14); rsi != 50.0 {
		t.Errorf("Expected neutral RSI 50 for short history, got %f", rsi)
	}
}

func TestRSISeriesWarmup(t *testing.T) {
	series := RSISeries(risingCloses(30), 14)
	for i := 0; i < 14; i++ {
		if Valid(series[i]) {
			t.Fatalf("Expected NaN during warm-up at index %d, got %f", i, series[i])
		}
	}
	if !Valid(series[14]) {
		t.Error("Expected first defined RSI value at index 14")
	}
}

func TestEMAConstantSeries(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50.0
	}
	if ema := EMA(closes, 21); math.Abs(ema-50.0) > 1e-9 {
		t.Errorf("Expected EMA 50 for constant series, got %f", ema)
	}
}

func TestMACDSignalLineLagsMACD(t *testing.T) {
	// A trend reversal: the MACD line should cross its signal line
	// somewhere after the turn.
	closes := make([]float64, 0, 120)
	for i := 0; i < 60; i++ {
		closes = append(closes, 100+float64(i)*0.5)
	}
	for i := 0; i < 60; i++ {
		closes = append(closes, 130-float64(i)*0.5)
	}

	macd, sig, _ := MACDSeries(closes, 12, 26, 9)
	n := len(closes)
	if !Valid(macd[n-1]) || !Valid(sig[n-1]) {
		t.Fatal("Expected defined MACD and signal values at series end")
	}
	if macd[n-1] >= sig[n-1] {
		t.Errorf("Expected MACD below signal after sustained downtrend, got macd=%f signal=%f",
			macd[n-1], sig[n-1])
	}
}

func TestMACDInvalidPeriods(t *testing.T) {
	macd, sig, _ := MACDSeries(risingCloses(100), 26, 12, 9) // fast >= slow
	if Valid(macd[99]) || Valid(sig[99]) {
		t.Error("Expected undefined MACD for fast >= slow periods")
	}
}

func TestBollingerBandsOrdering(t *testing.T) {
	closes := []float64{100, 102, 98, 103, 97, 105, 99, 101, 104, 96,
		100, 102, 98, 103, 97, 105, 99, 101, 104, 96, 100, 103}
	bb := Bollinger(closes, 20, 2.0)
	if !(bb.Lower < bb.Middle && bb.Middle < bb.Upper) {
		t.Errorf("Expected lower < middle < upper, got %f %f %f", bb.Lower, bb.Middle, bb.Upper)
	}
}

func TestBollingerFlatSeriesHasZeroWidth(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 42.0
	}
	bb := Bollinger(closes, 20, 2.0)
	if bb.Width() != 0 {
		t.Errorf("Expected zero band width for flat series, got %f", bb.Width())
	}
}

func TestStochasticBounds(t *testing.T) {
	candles := make([]market.Candle, 40)
	for i := range candles {
		base := 100 + math.Sin(float64(i)/3)*5
		candles[i] = market.Candle{Open: base, High: base + 1, Low: base - 1, Close: base + 0.5}
	}
	k, d := StochasticSeries(candles, 14, 3)
	for i := range candles {
		if Valid(k[i]) && (k[i] < 0 || k[i] > 100) {
			t.Fatalf("%%K out of bounds at %d: %f", i, k[i])
		}
		if Valid(d[i]) && (d[i] < 0 || d[i] > 100) {
			t.Fatalf("%%D out of bounds at %d: %f", i, d[i])
		}
	}
}

func TestATRPositiveForVolatileSeries(t *testing.T) {
	candles := make([]market.Candle, 30)
	for i := range candles {
		base := 100 + float64(i%5)
		candles[i] = market.Candle{Open: base, High: base + 2, Low: base - 2, Close: base}
	}
	if atr := ATR(candles, 14); atr <= 0 {
		t.Errorf("Expected positive ATR, got %f", atr)
	}
}

func TestADXDirectionalTrend(t *testing.T) {
	candles := make([]market.Candle, 60)
	for i := range candles {
		base := 100 + float64(i)*2
		candles[i] = market.Candle{Open: base, High: base + 3, Low: base - 1, Close: base + 2, Volume: 1000}
	}
	adx := ADX(candles, 14)
	if adx.PlusDI <= adx.MinusDI {
		t.Errorf("Expected +DI > -DI in uptrend, got +DI=%f -DI=%f", adx.PlusDI, adx.MinusDI)
	}
	if adx.ADX <= 20 {
		t.Errorf("Expected strong ADX in sustained trend, got %f", adx.ADX)
	}
}

func TestVolumeRatioSpike(t *testing.T) {
	candles := make([]market.Candle, 21)
	for i := range candles {
		candles[i] = market.Candle{Close: 100, Volume: 1000}
	}
	candles[20].Volume = 3000

	ratio := VolumeRatio(candles, 20)
	if math.Abs(ratio-3.0) > 1e-9 {
		t.Errorf("Expected volume ratio 3.0, got %f", ratio)
	}
}

func TestVWAPWeighting(t *testing.T) {
	candles := []market.Candle{
		{High: 102, Low: 98, Close: 100, Volume: 100},
		{High: 202, Low: 198, Close: 200, Volume: 300},
	}
	vwap := VWAP(candles)
	// Typical prices 100 and 200 weighted 1:3.
	if math.Abs(vwap-175.0) > 1e-9 {
		t.Errorf("Expected VWAP 175, got %f", vwap)
	}
}

func TestDefaultParametersWithinBounds(t *testing.T) {
	p := DefaultParameters()
	b := DefaultBounds()

	if float64(p.RSI.Period) < b.RSIPeriod.Min || float64(p.RSI.Period) > b.RSIPeriod.Max {
		t.Error("Default RSI period outside bounds")
	}
	if p.MACD.FastPeriod >= p.MACD.SlowPeriod {
		t.Error("Default MACD fast period must be below slow period")
	}
	if p.Bollinger.StdDev < b.BollingerStdDev.Min || p.Bollinger.StdDev > b.BollingerStdDev.Max {
		t.Error("Default Bollinger stdDev outside bounds")
	}
}
