package filters

import (
	"math"
	"reflect"
	"testing"

	"signal-sniper/internal/analysis"
	"signal-sniper/internal/indicators"
	"signal-sniper/internal/market"
	"signal-sniper/internal/signal"
)

func testCandles(n int, drift float64) []market.Candle {
	out := make([]market.Candle, n)
	price := 100.0
	for i := range out {
		price += drift + math.Sin(float64(i)/3)*0.4
		out[i] = market.Candle{
			Timestamp: int64(i) * 60_000,
			Open:      price - 0.2,
			High:      price + 0.8,
			Low:       price - 0.8,
			Close:     price,
			Volume:    1000,
		}
	}
	return out
}

func testData(n int, drift float64) market.TimeframeSet {
	return market.TimeframeSet{
		market.Timeframe1m: testCandles(n, drift),
		market.Timeframe5m: testCandles(n, drift),
	}
}

// TestAggregateMajority verifies counts, consensus and consistency.
func TestAggregateMajority(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	snapshot := &Snapshot{Results: map[FilterKey]FilterResult{
		{Timeframe: "1m", Filter: FilterRSI}:          {Name: FilterRSI, Passed: true, Direction: signal.DirectionUp, Weight: 2},
		{Timeframe: "1m", Filter: FilterEMAStack}:     {Name: FilterEMAStack, Passed: true, Direction: signal.DirectionUp, Weight: 1},
		{Timeframe: "1m", Filter: FilterVolumeSpike}:  {Name: FilterVolumeSpike, Passed: true, Direction: signal.DirectionDown, Weight: 1.2},
		{Timeframe: "5m", Filter: FilterMACDCross}:    {Name: FilterMACDCross, Passed: false},
		{Timeframe: "5m", Filter: FilterVWAPPosition}: {Name: FilterVWAPPosition, Passed: true, Direction: signal.DirectionUp, Weight: 0.8},
	}}

	engine.aggregate(snapshot)

	if snapshot.BullishCount != 3 || snapshot.BearishCount != 1 {
		t.Errorf("Expected 3/1 counts, got %d/%d", snapshot.BullishCount, snapshot.BearishCount)
	}
	if snapshot.Consensus != signal.DirectionUp {
		t.Errorf("Expected UP consensus, got %s", snapshot.Consensus)
	}
	if snapshot.ConsistencyScore != 75 {
		t.Errorf("Expected consistency 75, got %f", snapshot.ConsistencyScore)
	}
}

// TestAggregateTieHasNoConsensus verifies a tie yields no direction.
func TestAggregateTieHasNoConsensus(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	snapshot := &Snapshot{Results: map[FilterKey]FilterResult{
		{Timeframe: "1m", Filter: FilterRSI}:      {Name: FilterRSI, Passed: true, Direction: signal.DirectionUp, Weight: 2},
		{Timeframe: "1m", Filter: FilterEMAStack}: {Name: FilterEMAStack, Passed: true, Direction: signal.DirectionDown, Weight: 1},
	}}

	engine.aggregate(snapshot)

	if snapshot.Consensus != signal.DirectionNeutral {
		t.Errorf("Tied counts must yield no consensus, got %s", snapshot.Consensus)
	}
}

// TestConsistencyFullAgreement verifies the 100 bound.
func TestConsistencyFullAgreement(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	snapshot := &Snapshot{Results: map[FilterKey]FilterResult{
		{Timeframe: "1m", Filter: FilterRSI}:       {Name: FilterRSI, Passed: true, Direction: signal.DirectionUp, Weight: 2},
		{Timeframe: "1m", Filter: FilterOBVTrend}:  {Name: FilterOBVTrend, Passed: true, Direction: signal.DirectionUp, Weight: 0.8},
		{Timeframe: "5m", Filter: FilterEMACross}:  {Name: FilterEMACross, Passed: true, Direction: signal.DirectionUp, Weight: 1},
	}}

	engine.aggregate(snapshot)

	if snapshot.ConsistencyScore != 100 {
		t.Errorf("Expected consistency 100 for unanimous filters, got %f", snapshot.ConsistencyScore)
	}
}

// TestEvaluateDeterministic verifies re-evaluating frozen history
// yields identical snapshots.
func TestEvaluateDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)
	params := indicators.DefaultParameters()
	data := testData(120, 0.1)

	first := engine.Evaluate(data, params, "")
	second := engine.Evaluate(data, params, "")

	if first.BullishCount != second.BullishCount ||
		first.BearishCount != second.BearishCount ||
		first.Consensus != second.Consensus ||
		first.ConsistencyScore != second.ConsistencyScore ||
		first.SetupTag != second.SetupTag ||
		first.Regime != second.Regime {
		t.Error("Re-evaluating identical history must yield identical aggregates")
	}
	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Error("Re-evaluating identical history must yield identical filter results")
	}
}

// TestEvaluateRegimeHintWins verifies an explicit hint overrides
// detection.
func TestEvaluateRegimeHintWins(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)
	params := indicators.DefaultParameters()
	data := testData(120, 0.1)

	snapshot := engine.Evaluate(data, params, analysis.RegimeVolatile)
	if snapshot.Regime != analysis.RegimeVolatile {
		t.Errorf("Expected hinted VOLATILE regime, got %s", snapshot.Regime)
	}
}

// TestEvaluateFailedFiltersCarryNoDirection checks the core
// FilterResult invariant across a real evaluation.
func TestEvaluateFailedFiltersCarryNoDirection(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)
	params := indicators.DefaultParameters()

	snapshot := engine.Evaluate(testData(120, 0), params, "")
	for key, r := range snapshot.Results {
		if !r.Passed && r.Direction != "" {
			t.Errorf("Failed filter %s/%s carries direction %s", key.Timeframe, key.Filter, r.Direction)
		}
	}
}

// TestNamedSetupLookup verifies the combination table beats the
// generic tag.
func TestNamedSetupLookup(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	snapshot := &Snapshot{Results: map[FilterKey]FilterResult{
		{Timeframe: "1m", Filter: FilterDivergence}: {Name: FilterDivergence, Category: CategoryMomentum, Passed: true, Direction: signal.DirectionUp, Weight: 1.8},
		{Timeframe: "1m", Filter: FilterOrderBlock}: {Name: FilterOrderBlock, Category: CategorySMC, Passed: true, Direction: signal.DirectionUp, Weight: 1.5},
		{Timeframe: "5m", Filter: FilterOBVTrend}:   {Name: FilterOBVTrend, Category: CategoryVolume, Passed: true, Direction: signal.DirectionUp, Weight: 0.8},
	}}
	engine.aggregate(snapshot)

	if tag := engine.setupTag(snapshot); tag != "RSI divergence at order block" {
		t.Errorf("Expected named setup tag, got %q", tag)
	}
}

// TestGenericSetupTag verifies the fallback concatenation.
func TestGenericSetupTag(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	snapshot := &Snapshot{Results: map[FilterKey]FilterResult{
		{Timeframe: "1m", Filter: FilterRSI}:         {Name: FilterRSI, Category: CategoryMomentum, Passed: true, Direction: signal.DirectionUp, Weight: 2},
		{Timeframe: "1m", Filter: FilterEMAStack}:    {Name: FilterEMAStack, Category: CategoryTrend, Passed: true, Direction: signal.DirectionUp, Weight: 1.5},
		{Timeframe: "5m", Filter: FilterVolumeSpike}: {Name: FilterVolumeSpike, Category: CategoryVolume, Passed: true, Direction: signal.DirectionUp, Weight: 1.2},
	}}
	engine.aggregate(snapshot)

	if tag := engine.setupTag(snapshot); tag != "momentum+trend+volume long setup" {
		t.Errorf("Unexpected generic tag %q", tag)
	}
}

// TestSetupTagNoConsensus verifies tied snapshots get no setup.
func TestSetupTagNoConsensus(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	snapshot := &Snapshot{Results: map[FilterKey]FilterResult{}}
	engine.aggregate(snapshot)

	if tag := engine.setupTag(snapshot); tag != "no consensus" {
		t.Errorf("Expected no-consensus tag, got %q", tag)
	}
}

// TestFilterWeightRegimeTilt verifies regime multipliers change
// effective weights without disabling filters.
func TestFilterWeightRegimeTilt(t *testing.T) {
	trending := filterWeight(FilterEMAStack, CategoryTrend, analysis.RegimeTrending)
	ranging := filterWeight(FilterEMAStack, CategoryTrend, analysis.RegimeRanging)

	if trending <= ranging {
		t.Errorf("Trend filters must weigh more in trending regimes: %f vs %f", trending, ranging)
	}
	if ranging <= 0 {
		t.Error("Regime tilt must never zero out a filter")
	}
}
