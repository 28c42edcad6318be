package analysis

import "signal-sniper/internal/indicators"

// DivergenceType represents the kind of price/oscillator disagreement
type DivergenceType string

const (
	NoDivergence      DivergenceType = "none"
	BullishDivergence DivergenceType = "bullish"
	BearishDivergence DivergenceType = "bearish"
)

// divergenceWindow bounds the search to the most recent bars. Extrema
// outside this window are too old to signal a reversal.
const divergenceWindow = 10

// DetectDivergence compares local extrema of price against local
// extrema of an oscillator series over the trailing window. Bullish
// divergence is price printing lower lows while the oscillator prints
// higher lows; bearish is the mirror image on highs. Both the price
// and the oscillator need at least two extrema inside the window.
func DetectDivergence(closes, oscillator []float64) DivergenceType {
	n := len(closes)
	if len(oscillator) != n || n < divergenceWindow {
		return NoDivergence
	}

	start := n - divergenceWindow
	priceLows := localMinima(closes, start)
	oscLows := localMinima(oscillator, start)
	if len(priceLows) >= 2 && len(oscLows) >= 2 {
		pFirst, pLast := closes[priceLows[0]], closes[priceLows[len(priceLows)-1]]
		oFirst, oLast := oscillator[oscLows[0]], oscillator[oscLows[len(oscLows)-1]]
		if pLast < pFirst && oLast > oFirst {
			return BullishDivergence
		}
	}

	priceHighs := localMaxima(closes, start)
	oscHighs := localMaxima(oscillator, start)
	if len(priceHighs) >= 2 && len(oscHighs) >= 2 {
		pFirst, pLast := closes[priceHighs[0]], closes[priceHighs[len(priceHighs)-1]]
		oFirst, oLast := oscillator[oscHighs[0]], oscillator[oscHighs[len(oscHighs)-1]]
		if pLast > pFirst && oLast < oFirst {
			return BearishDivergence
		}
	}

	return NoDivergence
}

// localMinima returns indices of strict local minima at or after start,
// skipping undefined oscillator values.
func localMinima(series []float64, start int) []int {
	var out []int
	for i := max(start, 1); i < len(series)-1; i++ {
		if !indicators.Valid(series[i-1]) || !indicators.Valid(series[i]) || !indicators.Valid(series[i+1]) {
			continue
		}
		if series[i] < series[i-1] && series[i] < series[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// localMaxima returns indices of strict local maxima at or after start,
// skipping undefined oscillator values.
func localMaxima(series []float64, start int) []int {
	var out []int
	for i := max(start, 1); i < len(series)-1; i++ {
		if !indicators.Valid(series[i-1]) || !indicators.Valid(series[i]) || !indicators.Valid(series[i+1]) {
			continue
		}
		if series[i] > series[i-1] && series[i] > series[i+1] {
			out = append(out, i)
		}
	}
	return out
}
