package analysis

import (
	"signal-sniper/internal/indicators"
	"signal-sniper/internal/market"
)

// MarketRegime classifies the prevailing market conditions so that
// filter weighting can favour the signals that work in them.
type MarketRegime string

const (
	RegimeTrending  MarketRegime = "TRENDING"
	RegimeRanging   MarketRegime = "RANGING"
	RegimeVolatile  MarketRegime = "VOLATILE"
	RegimeLowVolume MarketRegime = "LOW_VOLUME"
	RegimeBalanced  MarketRegime = "BALANCED"
)

const (
	trendingADX      = 25.0
	rangingADX       = 20.0
	volatileATRRatio = 1.5
	lowVolumeRatio   = 0.5
)

// RegimeDetector classifies market regime from ADX, ATR expansion and
// volume participation.
type RegimeDetector struct {
	adxPeriod    int
	atrPeriod    int
	volumePeriod int
}

// NewRegimeDetector creates a detector with standard periods.
func NewRegimeDetector() *RegimeDetector {
	return &RegimeDetector{
		adxPeriod:    14,
		atrPeriod:    14,
		volumePeriod: 20,
	}
}

// Detect classifies the regime of the supplied candles. Checks run in
// priority order: volatility expansion first, then thin participation,
// then directional strength. Insufficient history yields Balanced.
func (rd *RegimeDetector) Detect(candles []market.Candle) MarketRegime {
	if len(candles) < rd.adxPeriod*2+2 {
		return RegimeBalanced
	}

	atrSeries := indicators.ATRSeries(candles, rd.atrPeriod)
	if ratio := atrExpansion(atrSeries); ratio > volatileATRRatio {
		return RegimeVolatile
	}

	if indicators.VolumeRatio(candles, rd.volumePeriod) < lowVolumeRatio {
		return RegimeLowVolume
	}

	adx := indicators.ADX(candles, rd.adxPeriod)
	if adx.ADX > trendingADX {
		return RegimeTrending
	}
	if adx.ADX < rangingADX {
		return RegimeRanging
	}

	return RegimeBalanced
}

// atrExpansion compares the latest ATR against its recent average.
// Values above 1 mean the current range is wider than usual.
func atrExpansion(atr []float64) float64 {
	n := len(atr)
	if n == 0 || !indicators.Valid(atr[n-1]) {
		return 1.0
	}

	sum := 0.0
	count := 0
	for i := n - 11; i < n-1; i++ {
		if i >= 0 && indicators.Valid(atr[i]) {
			sum += atr[i]
			count++
		}
	}
	if count == 0 || sum == 0 {
		return 1.0
	}

	return atr[n-1] / (sum / float64(count))
}
