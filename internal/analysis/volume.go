package analysis

import (
	"signal-sniper/internal/indicators"
	"signal-sniper/internal/market"
)

// VolumeAnalyzer provides volume-based technical analysis
type VolumeAnalyzer struct {
	avgPeriod int // Period for average volume calculation
}

// VolumeProfile represents volume analysis results
type VolumeProfile struct {
	CurrentVolume  float64
	AverageVolume  float64
	VolumeRatio    float64 // Current / Average of preceding bars
	IsHighVolume   bool    // Volume > 2x average
	IsClimaxVolume bool    // Volume > 3x average
	OBV            float64 // On-Balance Volume
	VolumeType     string  // "buying", "selling", "neutral"
}

// NewVolumeAnalyzer creates a new volume analyzer
func NewVolumeAnalyzer(avgPeriod int) *VolumeAnalyzer {
	if avgPeriod <= 0 {
		avgPeriod = 20
	}
	return &VolumeAnalyzer{avgPeriod: avgPeriod}
}

// AnalyzeVolume performs comprehensive volume analysis
func (va *VolumeAnalyzer) AnalyzeVolume(candles []market.Candle) *VolumeProfile {
	if len(candles) == 0 {
		return nil
	}

	current := candles[len(candles)-1]
	ratio := indicators.VolumeRatio(candles, va.avgPeriod)
	obvSeries := indicators.OBVSeries(candles)

	return &VolumeProfile{
		CurrentVolume:  current.Volume,
		AverageVolume:  indicators.AverageVolume(candles[:len(candles)-1], va.avgPeriod),
		VolumeRatio:    ratio,
		IsHighVolume:   ratio > 2.0,
		IsClimaxVolume: ratio > 3.0,
		OBV:            obvSeries[len(obvSeries)-1],
		VolumeType:     determineVolumeType(current),
	}
}

// IsVolumeSpikePresent checks if the latest bar's volume exceeds the
// threshold multiple of the recent average.
func (va *VolumeAnalyzer) IsVolumeSpikePresent(candles []market.Candle, threshold float64) bool {
	if len(candles) == 0 {
		return false
	}
	return indicators.VolumeRatio(candles, va.avgPeriod) >= threshold
}

// determineVolumeType identifies if volume is buying or selling pressure
func determineVolumeType(c market.Candle) string {
	body := c.Body()

	if c.IsBullish() {
		// Strong buying if small upper wick
		if c.UpperWick() < body*0.2 {
			return "buying"
		}
		return "neutral"
	}
	if c.IsBearish() {
		if c.LowerWick() < body*0.2 {
			return "selling"
		}
		return "neutral"
	}
	return "neutral"
}

// OBVDelta returns the On-Balance Volume change over the trailing
// period. Zero when there is not enough history.
func (va *VolumeAnalyzer) OBVDelta(candles []market.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}

	obv := indicators.OBVSeries(candles)
	return obv[len(obv)-1] - obv[len(obv)-1-period]
}

// IsOBVRising reports whether On-Balance Volume increased over the
// trailing period, confirming the direction of price moves.
func (va *VolumeAnalyzer) IsOBVRising(candles []market.Candle, period int) bool {
	return va.OBVDelta(candles, period) > 0
}
