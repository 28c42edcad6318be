package filters

import "signal-sniper/internal/analysis"

// Base evidence weight per filter. RSI extremes and confirmed
// candlestick patterns carry double weight; secondary confirmations
// like OBV or VWAP position carry less.
var baseWeights = map[string]float64{
	FilterRSI:            2.0,
	FilterMACDCross:      1.0,
	FilterMACDHistogram:  0.8,
	FilterStochastic:     1.0,
	FilterEMAStack:       1.0,
	FilterEMACross:       1.0,
	FilterADXTrend:       1.2,
	FilterVolumeSpike:    1.2,
	FilterOBVTrend:       0.8,
	FilterVWAPPosition:   0.8,
	FilterSRProximity:    1.5,
	FilterPivotLevel:     1.0,
	FilterBollingerWidth: 0.8,
	FilterATRExpansion:   0.8,
	FilterOrderBlock:     1.5,
	FilterFairValueGap:   1.2,
	FilterCandlePattern:  2.0,
	FilterDivergence:     1.8,
}

// regimeMultipliers scales each filter category by how much its kind
// of evidence matters in the detected regime. Every filter always
// runs; the regime only tilts the weighting.
var regimeMultipliers = map[analysis.MarketRegime]map[Category]float64{
	analysis.RegimeTrending: {
		CategoryMomentum:   1.2,
		CategoryTrend:      1.5,
		CategoryVolume:     1.0,
		CategoryStructure:  0.8,
		CategoryVolatility: 0.8,
		CategorySMC:        1.0,
		CategoryPattern:    1.0,
	},
	analysis.RegimeRanging: {
		CategoryMomentum:   1.2,
		CategoryTrend:      0.6,
		CategoryVolume:     0.9,
		CategoryStructure:  1.5,
		CategoryVolatility: 0.8,
		CategorySMC:        1.3,
		CategoryPattern:    1.1,
	},
	analysis.RegimeVolatile: {
		CategoryMomentum:   1.0,
		CategoryTrend:      0.8,
		CategoryVolume:     1.3,
		CategoryStructure:  0.9,
		CategoryVolatility: 1.5,
		CategorySMC:        0.9,
		CategoryPattern:    1.2,
	},
	analysis.RegimeLowVolume: {
		CategoryMomentum:   0.9,
		CategoryTrend:      0.9,
		CategoryVolume:     0.5,
		CategoryStructure:  1.2,
		CategoryVolatility: 0.8,
		CategorySMC:        1.2,
		CategoryPattern:    1.0,
	},
	analysis.RegimeBalanced: {
		CategoryMomentum:   1.0,
		CategoryTrend:      1.0,
		CategoryVolume:     1.0,
		CategoryStructure:  1.0,
		CategoryVolatility: 1.0,
		CategorySMC:        1.0,
		CategoryPattern:    1.0,
	},
}

// filterWeight resolves the effective weight of a filter under a
// regime.
func filterWeight(name string, category Category, regime analysis.MarketRegime) float64 {
	weight, ok := baseWeights[name]
	if !ok {
		weight = 1.0
	}

	if multipliers, ok := regimeMultipliers[regime]; ok {
		if m, ok := multipliers[category]; ok {
			weight *= m
		}
	}

	return weight
}
