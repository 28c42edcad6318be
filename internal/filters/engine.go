package filters

import (
	"signal-sniper/internal/analysis"
	"signal-sniper/internal/indicators"
	"signal-sniper/internal/logging"
	"signal-sniper/internal/market"
	"signal-sniper/internal/patterns"
	"signal-sniper/internal/signal"
)

// Config holds the filter engine's tunable thresholds.
type Config struct {
	ADXThreshold     float64
	VolumeSpikeRatio float64
	FVGMinGapPercent float64
	FVGMaxAge        int
	OrderBlockMaxAge int
	SwingLookback    int
	PatternMinBody   float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		ADXThreshold:     25.0,
		VolumeSpikeRatio: 2.0,
		FVGMinGapPercent: 0.1,
		FVGMaxAge:        30,
		OrderBlockMaxAge: 50,
		SwingLookback:    5,
		PatternMinBody:   0.5,
	}
}

// Engine evaluates the filter catalogue across timeframes and
// aggregates the results into a directional consensus. Stateless
// given its inputs; two calls with identical candles yield identical
// snapshots.
type Engine struct {
	cfg         Config
	log         *logging.Logger
	patterns    *patterns.PatternDetector
	orderBlocks *analysis.OrderBlockDetector
	fvgs        *analysis.FVGDetector
	structures  *analysis.StructureAnalyzer
	regimes     *analysis.RegimeDetector
	volume      *analysis.VolumeAnalyzer
}

// NewEngine creates a filter engine.
func NewEngine(cfg Config, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Default()
	}
	return &Engine{
		cfg:         cfg,
		log:         log.WithComponent("filters"),
		patterns:    patterns.NewPatternDetector(cfg.PatternMinBody),
		orderBlocks: analysis.NewOrderBlockDetector(cfg.OrderBlockMaxAge),
		fvgs:        analysis.NewFVGDetector(cfg.FVGMinGapPercent, cfg.FVGMaxAge),
		structures:  analysis.NewStructureAnalyzer(cfg.SwingLookback),
		regimes:     analysis.NewRegimeDetector(),
		volume:      analysis.NewVolumeAnalyzer(20),
	}
}

// Evaluate runs every filter on every supplied timeframe and
// aggregates the passed results. An explicit regime hint overrides
// detection; every filter still runs regardless of regime, which only
// tilts the weights.
func (e *Engine) Evaluate(data market.TimeframeSet, params indicators.ParameterSet, regimeHint analysis.MarketRegime) *Snapshot {
	regime := regimeHint
	if regime == "" {
		regime = e.regimes.Detect(data.Primary())
	}

	snapshot := &Snapshot{
		Regime:  regime,
		Results: make(map[FilterKey]FilterResult),
	}

	for _, timeframe := range data.Timeframes() {
		candles := data[timeframe]
		for name, result := range e.evaluateTimeframe(candles, params) {
			result.Weight = filterWeight(name, result.Category, regime)
			snapshot.Results[FilterKey{Timeframe: timeframe, Filter: name}] = result
		}
	}

	e.aggregate(snapshot)
	snapshot.SetupTag = e.setupTag(snapshot)

	e.log.Debug("Confluence evaluation complete",
		"regime", string(regime),
		"bullish", snapshot.BullishCount,
		"bearish", snapshot.BearishCount,
		"consensus", string(snapshot.Consensus),
		"consistency", snapshot.ConsistencyScore,
		"setup", snapshot.SetupTag)

	return snapshot
}

// aggregate tallies passed filters into counts, a majority consensus
// and a consistency score. A bullish/bearish tie yields no consensus.
func (e *Engine) aggregate(snapshot *Snapshot) {
	for _, r := range snapshot.Results {
		if !r.Passed {
			continue
		}
		switch r.Direction {
		case signal.DirectionUp:
			snapshot.BullishCount++
			snapshot.WeightedBullish += r.Weight
		case signal.DirectionDown:
			snapshot.BearishCount++
			snapshot.WeightedBearish += r.Weight
		}
	}

	switch {
	case snapshot.BullishCount > snapshot.BearishCount:
		snapshot.Consensus = signal.DirectionUp
	case snapshot.BearishCount > snapshot.BullishCount:
		snapshot.Consensus = signal.DirectionDown
	default:
		snapshot.Consensus = signal.DirectionNeutral
	}

	directional := snapshot.BullishCount + snapshot.BearishCount
	if directional == 0 || snapshot.Consensus == signal.DirectionNeutral {
		snapshot.ConsistencyScore = 0
		return
	}

	agreeing := snapshot.BullishCount
	if snapshot.Consensus == signal.DirectionDown {
		agreeing = snapshot.BearishCount
	}
	snapshot.ConsistencyScore = float64(agreeing) / float64(directional) * 100
}
