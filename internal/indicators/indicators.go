package indicators

import (
	"math"

	"signal-sniper/internal/market"
)

// Series functions return a slice aligned with the input; entries before
// the warm-up period are NaN. Point helpers return the latest value with
// a neutral default when history is too short.

// Valid reports whether a series value is defined.
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// ============================================================================
// MOVING AVERAGES
// ============================================================================

// SMA calculates the Simple Moving Average of the last period closes.
func SMA(values []float64, period int) float64 {
	if len(values) < period || period <= 0 {
		return 0
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}

// EMASeries calculates the Exponential Moving Average series.
func EMASeries(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if len(values) < period || period <= 0 {
		return out
	}

	// Seed with the SMA of the first period values.
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i] * multiplier) + (ema * (1 - multiplier))
		out[i] = ema
	}
	return out
}

// EMA returns the latest EMA value.
func EMA(values []float64, period int) float64 {
	series := EMASeries(values, period)
	if len(series) == 0 || !Valid(series[len(series)-1]) {
		return 0
	}
	return series[len(series)-1]
}

// ============================================================================
// RSI (Relative Strength Index)
// ============================================================================

// RSISeries calculates the RSI series using Wilder smoothing.
func RSISeries(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < period+1 || period <= 0 {
		return out
	}

	gains := 0.0
	losses := 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// RSI returns the latest RSI value, 50 (neutral) when undefined.
func RSI(closes []float64, period int) float64 {
	series := RSISeries(closes, period)
	if len(series) == 0 || !Valid(series[len(series)-1]) {
		return 50.0
	}
	return series[len(series)-1]
}

// ============================================================================
// MACD (Moving Average Convergence Divergence)
// ============================================================================

// MACDResult holds the latest MACD values.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACDSeries calculates the MACD line, signal line, and histogram series.
func MACDSeries(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signalLine, histogram []float64) {
	macd = nanSlice(len(closes))
	signalLine = nanSlice(len(closes))
	histogram = nanSlice(len(closes))
	if len(closes) < slowPeriod+signalPeriod || fastPeriod >= slowPeriod {
		return macd, signalLine, histogram
	}

	fast := EMASeries(closes, fastPeriod)
	slow := EMASeries(closes, slowPeriod)
	for i := range closes {
		if Valid(fast[i]) && Valid(slow[i]) {
			macd[i] = fast[i] - slow[i]
		}
	}

	// Signal line: EMA of the MACD line over its defined region.
	start := slowPeriod - 1
	defined := macd[start:]
	sig := EMASeries(defined, signalPeriod)
	for i, v := range sig {
		signalLine[start+i] = v
	}
	for i := range closes {
		if Valid(macd[i]) && Valid(signalLine[i]) {
			histogram[i] = macd[i] - signalLine[i]
		}
	}
	return macd, signalLine, histogram
}

// MACD returns the latest MACD values.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) *MACDResult {
	macd, sig, hist := MACDSeries(closes, fastPeriod, slowPeriod, signalPeriod)
	n := len(closes)
	if n == 0 || !Valid(macd[n-1]) || !Valid(sig[n-1]) {
		return &MACDResult{}
	}
	return &MACDResult{MACD: macd[n-1], Signal: sig[n-1], Histogram: hist[n-1]}
}

// ============================================================================
// BOLLINGER BANDS
// ============================================================================

// BollingerResult holds the latest Bollinger Band values.
type BollingerResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Width returns the band width relative to the middle band.
func (b *BollingerResult) Width() float64 {
	if b.Middle == 0 {
		return 0
	}
	return (b.Upper - b.Lower) / b.Middle
}

// BollingerSeries calculates Bollinger Band series.
func BollingerSeries(closes []float64, period int, stdDevMult float64) (upper, middle, lower []float64) {
	upper = nanSlice(len(closes))
	middle = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	if len(closes) < period || period <= 0 {
		return upper, middle, lower
	}

	for i := period - 1; i < len(closes); i++ {
		window := closes[i-period+1 : i+1]
		mid := 0.0
		for _, v := range window {
			mid += v
		}
		mid /= float64(period)

		variance := 0.0
		for _, v := range window {
			diff := v - mid
			variance += diff * diff
		}
		stdDev := math.Sqrt(variance / float64(period))

		middle[i] = mid
		upper[i] = mid + stdDev*stdDevMult
		lower[i] = mid - stdDev*stdDevMult
	}
	return upper, middle, lower
}

// Bollinger returns the latest Bollinger Band values.
func Bollinger(closes []float64, period int, stdDevMult float64) *BollingerResult {
	upper, middle, lower := BollingerSeries(closes, period, stdDevMult)
	n := len(closes)
	if n == 0 || !Valid(middle[n-1]) {
		return &BollingerResult{}
	}
	return &BollingerResult{Upper: upper[n-1], Middle: middle[n-1], Lower: lower[n-1]}
}

// ============================================================================
// STOCHASTIC OSCILLATOR
// ============================================================================

// StochasticResult holds the latest %K and %D values.
type StochasticResult struct {
	K float64
	D float64
}

// StochasticSeries calculates %K and its %D SMA smoothing.
func StochasticSeries(candles []market.Candle, kPeriod, dPeriod int) (k, d []float64) {
	k = nanSlice(len(candles))
	d = nanSlice(len(candles))
	if len(candles) < kPeriod || kPeriod <= 0 || dPeriod <= 0 {
		return k, d
	}

	for i := kPeriod - 1; i < len(candles); i++ {
		highest := candles[i-kPeriod+1].High
		lowest := candles[i-kPeriod+1].Low
		for j := i - kPeriod + 2; j <= i; j++ {
			if candles[j].High > highest {
				highest = candles[j].High
			}
			if candles[j].Low < lowest {
				lowest = candles[j].Low
			}
		}
		if highest == lowest {
			k[i] = 50.0
			continue
		}
		k[i] = ((candles[i].Close - lowest) / (highest - lowest)) * 100
	}

	// %D is the SMA of %K.
	for i := kPeriod - 1 + dPeriod - 1; i < len(candles); i++ {
		sum := 0.0
		valid := true
		for j := i - dPeriod + 1; j <= i; j++ {
			if !Valid(k[j]) {
				valid = false
				break
			}
			sum += k[j]
		}
		if valid {
			d[i] = sum / float64(dPeriod)
		}
	}
	return k, d
}

// Stochastic returns the latest %K and %D, neutral 50s when undefined.
func Stochastic(candles []market.Candle, kPeriod, dPeriod int) *StochasticResult {
	k, d := StochasticSeries(candles, kPeriod, dPeriod)
	n := len(candles)
	if n == 0 || !Valid(k[n-1]) || !Valid(d[n-1]) {
		return &StochasticResult{K: 50, D: 50}
	}
	return &StochasticResult{K: k[n-1], D: d[n-1]}
}

// ============================================================================
// ATR (Average True Range)
// ============================================================================

// ATRSeries calculates the Average True Range series (Wilder smoothing).
func ATRSeries(candles []market.Candle, period int) []float64 {
	out := nanSlice(len(candles))
	if len(candles) < period+1 || period <= 0 {
		return out
	}

	trSum := 0.0
	for i := 1; i <= period; i++ {
		trSum += trueRange(candles[i], candles[i-1])
	}
	atr := trSum / float64(period)
	out[period] = atr

	for i := period + 1; i < len(candles); i++ {
		atr = (atr*float64(period-1) + trueRange(candles[i], candles[i-1])) / float64(period)
		out[i] = atr
	}
	return out
}

// ATR returns the latest ATR value.
func ATR(candles []market.Candle, period int) float64 {
	series := ATRSeries(candles, period)
	if len(series) == 0 || !Valid(series[len(series)-1]) {
		return 0
	}
	return series[len(series)-1]
}

func trueRange(c, prev market.Candle) float64 {
	return math.Max(c.High-c.Low,
		math.Max(math.Abs(c.High-prev.Close), math.Abs(c.Low-prev.Close)))
}

// ============================================================================
// ADX (Average Directional Index)
// ============================================================================

// ADXResult holds ADX and directional index values.
type ADXResult struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// ADX calculates the Average Directional Index with +DI and -DI.
func ADX(candles []market.Candle, period int) *ADXResult {
	if len(candles) < 2*period+1 || period <= 0 {
		return &ADXResult{}
	}

	n := len(candles)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
		tr[i] = trueRange(candles[i], candles[i-1])
	}

	// Wilder-smoothed sums.
	smPlus, smMinus, smTR := 0.0, 0.0, 0.0
	for i := 1; i <= period; i++ {
		smPlus += plusDM[i]
		smMinus += minusDM[i]
		smTR += tr[i]
	}

	var plusDI, minusDI, adx float64
	dxSum := 0.0
	dxCount := 0
	for i := period + 1; i < n; i++ {
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		smTR = smTR - smTR/float64(period) + tr[i]
		if smTR == 0 {
			continue
		}
		plusDI = 100 * smPlus / smTR
		minusDI = 100 * smMinus / smTR
		diSum := plusDI + minusDI
		if diSum == 0 {
			continue
		}
		dx := 100 * math.Abs(plusDI-minusDI) / diSum
		dxCount++
		if dxCount < period {
			dxSum += dx
		} else if dxCount == period {
			dxSum += dx
			adx = dxSum / float64(period)
		} else {
			adx = (adx*float64(period-1) + dx) / float64(period)
		}
	}

	return &ADXResult{ADX: adx, PlusDI: plusDI, MinusDI: minusDI}
}

// ============================================================================
// VOLUME
// ============================================================================

// OBVSeries calculates the On-Balance Volume series.
func OBVSeries(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			out[i] = out[i-1] + candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			out[i] = out[i-1] - candles[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// VWAP calculates the volume-weighted average price over the series.
func VWAP(candles []market.Candle) float64 {
	var pvSum, vSum float64
	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		pvSum += typical * c.Volume
		vSum += c.Volume
	}
	if vSum == 0 {
		return 0
	}
	return pvSum / vSum
}

// AverageVolume calculates average volume over the trailing period.
func AverageVolume(candles []market.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < period {
		period = len(candles)
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Volume
	}
	return sum / float64(period)
}

// VolumeRatio compares the latest volume against the trailing average,
// excluding the latest candle from the baseline.
func VolumeRatio(candles []market.Candle, period int) float64 {
	if len(candles) < 2 {
		return 1.0
	}
	avg := AverageVolume(candles[:len(candles)-1], period)
	if avg == 0 {
		return 1.0
	}
	return candles[len(candles)-1].Volume / avg
}

// ============================================================================
// MOMENTUM
// ============================================================================

// Momentum calculates percent price change over the period.
func Momentum(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return 0
	}
	past := closes[len(closes)-period-1]
	if past == 0 {
		return 0
	}
	return ((closes[len(closes)-1] - past) / past) * 100
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
