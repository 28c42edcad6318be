package filters

import (
	"fmt"

	"signal-sniper/internal/analysis"
	"signal-sniper/internal/indicators"
	"signal-sniper/internal/market"
	"signal-sniper/internal/signal"
)

// Filter names. Each is evaluated once per timeframe.
const (
	FilterRSI            = "rsi"
	FilterMACDCross      = "macd_cross"
	FilterMACDHistogram  = "macd_histogram"
	FilterStochastic     = "stochastic"
	FilterEMAStack       = "ema_stack"
	FilterEMACross       = "ema_cross"
	FilterADXTrend       = "adx_trend"
	FilterVolumeSpike    = "volume_spike"
	FilterOBVTrend       = "obv_trend"
	FilterVWAPPosition   = "vwap_position"
	FilterSRProximity    = "sr_proximity"
	FilterPivotLevel     = "pivot_level"
	FilterBollingerWidth = "bollinger_width"
	FilterATRExpansion   = "atr_expansion"
	FilterOrderBlock     = "order_block"
	FilterFairValueGap   = "fair_value_gap"
	FilterCandlePattern  = "candle_pattern"
	FilterDivergence     = "divergence"
)

// EMA stack periods, fast to slow.
const (
	emaFastPeriod = 9
	emaMidPeriod  = 21
	emaSlowPeriod = 50
)

// evaluateTimeframe runs the whole catalogue against one timeframe's
// candles. Filters that lack history simply do not pass.
func (e *Engine) evaluateTimeframe(candles []market.Candle, params indicators.ParameterSet) map[string]FilterResult {
	results := make(map[string]FilterResult, 18)
	closes := market.Closes(candles)

	results[FilterRSI] = e.rsiFilter(closes, params.RSI)
	results[FilterMACDCross], results[FilterMACDHistogram] = e.macdFilters(closes, params.MACD)
	results[FilterStochastic] = e.stochasticFilter(candles, params)
	results[FilterEMAStack] = e.emaStackFilter(closes)
	results[FilterEMACross] = e.emaCrossFilter(closes)
	results[FilterADXTrend] = e.adxFilter(candles)
	results[FilterVolumeSpike] = e.volumeSpikeFilter(candles)
	results[FilterOBVTrend] = e.obvFilter(candles)
	results[FilterVWAPPosition] = e.vwapFilter(candles)
	results[FilterSRProximity] = e.srFilter(candles)
	results[FilterPivotLevel] = e.pivotFilter(candles)
	results[FilterBollingerWidth] = e.bollingerFilter(closes, params.Bollinger)
	results[FilterATRExpansion] = e.atrFilter(candles)
	results[FilterOrderBlock] = e.orderBlockFilter(candles)
	results[FilterFairValueGap] = e.fvgFilter(candles)
	results[FilterCandlePattern] = e.patternFilter(candles)
	results[FilterDivergence] = e.divergenceFilter(closes, params.RSI)

	return results
}

func failed(name string, category Category, reason string) FilterResult {
	return FilterResult{Name: name, Category: category, Reason: reason}
}

func (e *Engine) rsiFilter(closes []float64, p indicators.RSIParams) FilterResult {
	if len(closes) < p.Period+1 {
		return failed(FilterRSI, CategoryMomentum, "insufficient history")
	}

	rsi := indicators.RSI(closes, p.Period)
	r := FilterResult{Name: FilterRSI, Category: CategoryMomentum, Value: rsi}

	switch {
	case rsi <= p.Oversold:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = fmt.Sprintf("RSI %.1f oversold (<= %.0f)", rsi, p.Oversold)
	case rsi >= p.Overbought:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = fmt.Sprintf("RSI %.1f overbought (>= %.0f)", rsi, p.Overbought)
	default:
		r.Reason = fmt.Sprintf("RSI %.1f neutral", rsi)
	}
	return r
}

func (e *Engine) macdFilters(closes []float64, p indicators.MACDParams) (FilterResult, FilterResult) {
	cross := failed(FilterMACDCross, CategoryMomentum, "insufficient history")
	hist := failed(FilterMACDHistogram, CategoryMomentum, "insufficient history")

	macd, signalLine, histogram := indicators.MACDSeries(closes, p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
	n := len(closes)
	if n < 2 || !indicators.Valid(macd[n-1]) || !indicators.Valid(signalLine[n-1]) ||
		!indicators.Valid(macd[n-2]) || !indicators.Valid(signalLine[n-2]) {
		return cross, hist
	}

	cross = FilterResult{Name: FilterMACDCross, Category: CategoryMomentum, Value: macd[n-1]}
	switch {
	case macd[n-2] <= signalLine[n-2] && macd[n-1] > signalLine[n-1]:
		cross.Passed = true
		cross.Direction = signal.DirectionUp
		cross.Reason = "MACD crossed above signal line"
	case macd[n-2] >= signalLine[n-2] && macd[n-1] < signalLine[n-1]:
		cross.Passed = true
		cross.Direction = signal.DirectionDown
		cross.Reason = "MACD crossed below signal line"
	default:
		cross.Reason = "no fresh MACD cross"
	}

	hist = FilterResult{Name: FilterMACDHistogram, Category: CategoryMomentum, Value: histogram[n-1]}
	switch {
	case histogram[n-1] > 0:
		hist.Passed = true
		hist.Direction = signal.DirectionUp
		hist.Reason = "positive MACD histogram"
	case histogram[n-1] < 0:
		hist.Passed = true
		hist.Direction = signal.DirectionDown
		hist.Reason = "negative MACD histogram"
	default:
		hist.Reason = "flat MACD histogram"
	}

	return cross, hist
}

func (e *Engine) stochasticFilter(candles []market.Candle, params indicators.ParameterSet) FilterResult {
	p := params.Stochastic
	if len(candles) < p.KPeriod+p.DPeriod {
		return failed(FilterStochastic, CategoryMomentum, "insufficient history")
	}

	st := indicators.Stochastic(candles, p.KPeriod, p.DPeriod)
	r := FilterResult{Name: FilterStochastic, Category: CategoryMomentum, Value: st.K}

	switch {
	case st.K < 20 && st.K > st.D:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = fmt.Sprintf("stochastic %.1f turning up from oversold", st.K)
	case st.K > 80 && st.K < st.D:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = fmt.Sprintf("stochastic %.1f turning down from overbought", st.K)
	default:
		r.Reason = fmt.Sprintf("stochastic %.1f neutral", st.K)
	}
	return r
}

func (e *Engine) emaStackFilter(closes []float64) FilterResult {
	if len(closes) < emaSlowPeriod {
		return failed(FilterEMAStack, CategoryTrend, "insufficient history")
	}

	fast := indicators.EMA(closes, emaFastPeriod)
	mid := indicators.EMA(closes, emaMidPeriod)
	slow := indicators.EMA(closes, emaSlowPeriod)

	r := FilterResult{Name: FilterEMAStack, Category: CategoryTrend, Value: fast - slow}
	switch {
	case fast > mid && mid > slow:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = "bullish EMA alignment 9>21>50"
	case fast < mid && mid < slow:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = "bearish EMA alignment 9<21<50"
	default:
		r.Reason = "mixed EMA stack"
	}
	return r
}

func (e *Engine) emaCrossFilter(closes []float64) FilterResult {
	if len(closes) < emaMidPeriod+1 {
		return failed(FilterEMACross, CategoryTrend, "insufficient history")
	}

	fastSeries := indicators.EMASeries(closes, emaFastPeriod)
	midSeries := indicators.EMASeries(closes, emaMidPeriod)
	n := len(closes)
	if !indicators.Valid(fastSeries[n-2]) || !indicators.Valid(midSeries[n-2]) {
		return failed(FilterEMACross, CategoryTrend, "insufficient history")
	}

	r := FilterResult{Name: FilterEMACross, Category: CategoryTrend, Value: fastSeries[n-1] - midSeries[n-1]}
	switch {
	case fastSeries[n-2] <= midSeries[n-2] && fastSeries[n-1] > midSeries[n-1]:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = "EMA 9 crossed above EMA 21"
	case fastSeries[n-2] >= midSeries[n-2] && fastSeries[n-1] < midSeries[n-1]:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = "EMA 9 crossed below EMA 21"
	default:
		r.Reason = "no fresh EMA cross"
	}
	return r
}

func (e *Engine) adxFilter(candles []market.Candle) FilterResult {
	if len(candles) < 30 {
		return failed(FilterADXTrend, CategoryTrend, "insufficient history")
	}

	adx := indicators.ADX(candles, 14)
	r := FilterResult{Name: FilterADXTrend, Category: CategoryTrend, Value: adx.ADX}

	if adx.ADX <= e.cfg.ADXThreshold {
		r.Reason = fmt.Sprintf("ADX %.1f below trend threshold", adx.ADX)
		return r
	}

	r.Passed = true
	if adx.PlusDI >= adx.MinusDI {
		r.Direction = signal.DirectionUp
		r.Reason = fmt.Sprintf("ADX %.1f trending, +DI dominant", adx.ADX)
	} else {
		r.Direction = signal.DirectionDown
		r.Reason = fmt.Sprintf("ADX %.1f trending, -DI dominant", adx.ADX)
	}
	return r
}

func (e *Engine) volumeSpikeFilter(candles []market.Candle) FilterResult {
	if len(candles) < 2 {
		return failed(FilterVolumeSpike, CategoryVolume, "insufficient history")
	}

	profile := e.volume.AnalyzeVolume(candles)
	r := FilterResult{Name: FilterVolumeSpike, Category: CategoryVolume, Value: profile.VolumeRatio}

	if profile.VolumeRatio < e.cfg.VolumeSpikeRatio {
		r.Reason = fmt.Sprintf("volume ratio %.2f below spike threshold", profile.VolumeRatio)
		return r
	}

	r.Passed = true
	last := candles[len(candles)-1]
	if last.IsBullish() {
		r.Direction = signal.DirectionUp
	} else if last.IsBearish() {
		r.Direction = signal.DirectionDown
	} else {
		r.Direction = signal.DirectionNeutral
	}
	if profile.IsClimaxVolume {
		r.Reason = fmt.Sprintf("climax volume %.2fx average on %s pressure", profile.VolumeRatio, profile.VolumeType)
	} else {
		r.Reason = fmt.Sprintf("volume spike %.2fx average", profile.VolumeRatio)
	}
	return r
}

func (e *Engine) obvFilter(candles []market.Candle) FilterResult {
	const lookback = 5
	if len(candles) < lookback+1 {
		return failed(FilterOBVTrend, CategoryVolume, "insufficient history")
	}

	delta := e.volume.OBVDelta(candles, lookback)

	r := FilterResult{Name: FilterOBVTrend, Category: CategoryVolume, Value: delta}
	switch {
	case delta > 0:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = "OBV rising"
	case delta < 0:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = "OBV falling"
	default:
		r.Reason = "OBV flat"
	}
	return r
}

func (e *Engine) vwapFilter(candles []market.Candle) FilterResult {
	if len(candles) < 2 {
		return failed(FilterVWAPPosition, CategoryVolume, "insufficient history")
	}

	vwap := indicators.VWAP(candles)
	if vwap == 0 {
		return failed(FilterVWAPPosition, CategoryVolume, "no volume data")
	}

	price := market.LastClose(candles)
	deviation := (price - vwap) / vwap

	r := FilterResult{Name: FilterVWAPPosition, Category: CategoryVolume, Value: deviation * 100}
	switch {
	case deviation > 0.001:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = fmt.Sprintf("price %.2f%% above VWAP", deviation*100)
	case deviation < -0.001:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = fmt.Sprintf("price %.2f%% below VWAP", deviation*100)
	default:
		r.Reason = "price at VWAP"
	}
	return r
}

func (e *Engine) srFilter(candles []market.Candle) FilterResult {
	structure := e.structures.AnalyzeStructure(candles)
	if structure == nil {
		return failed(FilterSRProximity, CategoryStructure, "insufficient history")
	}

	price := market.LastClose(candles)
	r := FilterResult{Name: FilterSRProximity, Category: CategoryStructure, Value: price}

	const tolerance = 0.005
	switch {
	case e.structures.IsPriceAtSupport(price, structure.SupportLevels, tolerance):
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = "price at support level"
	case e.structures.IsPriceAtResistance(price, structure.ResistanceLevels, tolerance):
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = "price at resistance level"
	default:
		r.Reason = "price between levels"
	}
	return r
}

func (e *Engine) pivotFilter(candles []market.Candle) FilterResult {
	pivots := analysis.ComputePivots(candles)
	if pivots == nil {
		return failed(FilterPivotLevel, CategoryStructure, "insufficient history")
	}

	price := market.LastClose(candles)
	r := FilterResult{Name: FilterPivotLevel, Category: CategoryStructure, Value: pivots.Pivot}

	const tolerance = 0.003
	switch {
	case nearLevel(price, pivots.S1, tolerance) || nearLevel(price, pivots.S2, tolerance):
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = "price at pivot support"
	case nearLevel(price, pivots.R1, tolerance) || nearLevel(price, pivots.R2, tolerance):
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = "price at pivot resistance"
	default:
		r.Reason = "price away from pivot levels"
	}
	return r
}

func (e *Engine) bollingerFilter(closes []float64, p indicators.BollingerParams) FilterResult {
	if len(closes) < p.Period {
		return failed(FilterBollingerWidth, CategoryVolatility, "insufficient history")
	}

	bb := indicators.Bollinger(closes, p.Period, p.StdDev)
	price := closes[len(closes)-1]
	r := FilterResult{Name: FilterBollingerWidth, Category: CategoryVolatility, Value: bb.Width()}

	if bb.Width() == 0 {
		r.Reason = "flat bands"
		return r
	}

	switch {
	case price <= bb.Lower:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = "price at or below lower band"
	case price >= bb.Upper:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = "price at or above upper band"
	default:
		r.Reason = "price inside bands"
	}
	return r
}

func (e *Engine) atrFilter(candles []market.Candle) FilterResult {
	if len(candles) < 30 {
		return failed(FilterATRExpansion, CategoryVolatility, "insufficient history")
	}

	atr := indicators.ATRSeries(candles, 14)
	n := len(atr)
	if !indicators.Valid(atr[n-1]) || !indicators.Valid(atr[n-6]) || atr[n-6] == 0 {
		return failed(FilterATRExpansion, CategoryVolatility, "insufficient history")
	}

	ratio := atr[n-1] / atr[n-6]
	r := FilterResult{Name: FilterATRExpansion, Category: CategoryVolatility, Value: ratio}

	if ratio < 1.2 {
		r.Reason = fmt.Sprintf("ATR ratio %.2f, no expansion", ratio)
		return r
	}

	r.Passed = true
	last := candles[len(candles)-1]
	if last.IsBullish() {
		r.Direction = signal.DirectionUp
	} else if last.IsBearish() {
		r.Direction = signal.DirectionDown
	} else {
		r.Direction = signal.DirectionNeutral
	}
	r.Reason = fmt.Sprintf("ATR expanding %.2fx", ratio)
	return r
}

func (e *Engine) orderBlockFilter(candles []market.Candle) FilterResult {
	blocks := e.orderBlocks.DetectOrderBlocks(candles)
	if len(blocks) == 0 {
		return failed(FilterOrderBlock, CategorySMC, "no active order blocks")
	}

	price := market.LastClose(candles)
	block := e.orderBlocks.NearestActiveBlock(blocks, price)
	if block == nil {
		return failed(FilterOrderBlock, CategorySMC, "price outside active blocks")
	}

	r := FilterResult{Name: FilterOrderBlock, Category: CategorySMC, Value: price, Passed: true}
	if block.Type == analysis.BullishOrderBlock {
		r.Direction = signal.DirectionUp
		r.Reason = fmt.Sprintf("price inside bullish order block (age %d)", block.Age)
	} else {
		r.Direction = signal.DirectionDown
		r.Reason = fmt.Sprintf("price inside bearish order block (age %d)", block.Age)
	}
	return r
}

func (e *Engine) fvgFilter(candles []market.Candle) FilterResult {
	gaps := e.fvgs.DetectFVGs(candles)
	if len(gaps) == 0 {
		return failed(FilterFairValueGap, CategorySMC, "no active fair value gaps")
	}

	price := market.LastClose(candles)
	gap := e.fvgs.NearestFVG(gaps, price)
	if gap == nil {
		return failed(FilterFairValueGap, CategorySMC, "price outside active gaps")
	}

	r := FilterResult{Name: FilterFairValueGap, Category: CategorySMC, Value: price, Passed: true}
	if gap.Type == analysis.BullishFVG {
		r.Direction = signal.DirectionUp
		r.Reason = fmt.Sprintf("price inside bullish FVG (age %d)", gap.Age)
	} else {
		r.Direction = signal.DirectionDown
		r.Reason = fmt.Sprintf("price inside bearish FVG (age %d)", gap.Age)
	}
	return r
}

func (e *Engine) patternFilter(candles []market.Candle) FilterResult {
	const lookback = 5
	summary := e.patterns.Summarize(candles, lookback)

	r := FilterResult{
		Name:     FilterCandlePattern,
		Category: CategoryPattern,
		Value:    float64(summary.Bullish - summary.Bearish),
	}

	switch {
	case summary.Bullish > summary.Bearish:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = fmt.Sprintf("%d bullish vs %d bearish patterns", summary.Bullish, summary.Bearish)
	case summary.Bearish > summary.Bullish:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = fmt.Sprintf("%d bearish vs %d bullish patterns", summary.Bearish, summary.Bullish)
	default:
		r.Reason = "no pattern edge"
	}
	return r
}

func (e *Engine) divergenceFilter(closes []float64, p indicators.RSIParams) FilterResult {
	if len(closes) < p.Period+10 {
		return failed(FilterDivergence, CategoryMomentum, "insufficient history")
	}

	rsi := indicators.RSISeries(closes, p.Period)
	r := FilterResult{Name: FilterDivergence, Category: CategoryMomentum}

	switch analysis.DetectDivergence(closes, rsi) {
	case analysis.BullishDivergence:
		r.Passed = true
		r.Direction = signal.DirectionUp
		r.Reason = "bullish RSI divergence"
	case analysis.BearishDivergence:
		r.Passed = true
		r.Direction = signal.DirectionDown
		r.Reason = "bearish RSI divergence"
	default:
		r.Reason = "no divergence"
	}
	return r
}

func nearLevel(price, level, tolerance float64) bool {
	if level <= 0 {
		return false
	}
	diff := price - level
	if diff < 0 {
		diff = -diff
	}
	return diff/level < tolerance
}
