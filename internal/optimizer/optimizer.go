package optimizer

import (
	"sync"
	"time"

	"signal-sniper/internal/indicators"
	"signal-sniper/internal/logging"
	"signal-sniper/internal/market"
	"signal-sniper/internal/signal"
)

// Per-signal-type strength constants used when scoring simulated
// entries. Momentum crossings carry the most evidence.
const (
	rsiSignalWeight        = 1.0
	bollingerSignalWeight  = 0.9
	macdSignalWeight       = 0.8
	stochasticSignalWeight = 0.7
)

// Result captures one optimization run.
type Result struct {
	Parameters indicators.ParameterSet `json:"parameters"`
	Scores     map[string]float64      `json:"scores"`
	RunAt      time.Time               `json:"runAt"`
	Evaluated  int                     `json:"evaluated"`
}

// Config controls the optimizer's search behaviour.
type Config struct {
	Window       int           // Minimum candle history per run
	Horizon      int           // Look-ahead bars for scoring a signal
	MinScore     float64       // Acceptance threshold for new parameters
	ReRunAfter   time.Duration // Staleness interval for NeedsRun
	Bounds       indicators.Bounds
}

// DefaultConfig returns the standard search settings.
func DefaultConfig() Config {
	return Config{
		Window:     50,
		Horizon:    5,
		MinScore:   0.3,
		ReRunAfter: 24 * time.Hour,
		Bounds:     indicators.DefaultBounds(),
	}
}

// Optimizer maintains the process-wide active indicator parameter set
// and recalibrates it against recent history. Exactly one optimization
// may run at a time; a re-entrant call is rejected, not queued.
type Optimizer struct {
	cfg Config
	log *logging.Logger
	now func() time.Time

	mu      sync.Mutex
	running bool
	current indicators.ParameterSet
	scores  map[string]float64
	lastRun time.Time
}

// New creates an optimizer seeded with the default parameter set.
func New(cfg Config, log *logging.Logger) *Optimizer {
	if cfg.Window <= 0 {
		cfg.Window = 50
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 5
	}
	if cfg.ReRunAfter <= 0 {
		cfg.ReRunAfter = 24 * time.Hour
	}
	if log == nil {
		log = logging.Default()
	}
	return &Optimizer{
		cfg:     cfg,
		log:     log.WithComponent("optimizer"),
		now:     time.Now,
		current: indicators.DefaultParameters(),
		scores:  make(map[string]float64),
	}
}

// Current returns a copy of the active parameter set.
func (o *Optimizer) Current() indicators.ParameterSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// LastRun returns when the optimizer last completed, zero if never.
func (o *Optimizer) LastRun() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRun
}

// NeedsRun reports whether the active parameters are stale.
func (o *Optimizer) NeedsRun() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRun.IsZero() || o.now().Sub(o.lastRun) >= o.cfg.ReRunAfter
}

// Optimize grid-searches parameter candidates for each indicator
// against the trailing candle window and atomically installs any
// candidate whose mean per-signal score beats the acceptance
// threshold. Inconclusive data never degrades the active set.
func (o *Optimizer) Optimize(history []market.Candle) (*Result, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, signal.ErrOptimizationInFlight
	}
	if len(history) < o.cfg.Window {
		o.mu.Unlock()
		return nil, signal.ErrInsufficientData
	}
	o.running = true
	base := o.current
	o.mu.Unlock()

	started := o.now()
	window := history[len(history)-o.cfg.Window:]

	next := base
	scores := make(map[string]float64, 4)
	evaluated := 0

	rsiParams, rsiScore, n := o.searchRSI(window)
	scores["rsi"] = rsiScore
	evaluated += n
	if rsiScore > o.cfg.MinScore {
		next.RSI = rsiParams
	}

	macdParams, macdScore, n := o.searchMACD(window)
	scores["macd"] = macdScore
	evaluated += n
	if macdScore > o.cfg.MinScore {
		next.MACD = macdParams
	}

	bbParams, bbScore, n := o.searchBollinger(window)
	scores["bollinger"] = bbScore
	evaluated += n
	if bbScore > o.cfg.MinScore {
		next.Bollinger = bbParams
	}

	stochParams, stochScore, n := o.searchStochastic(window)
	scores["stochastic"] = stochScore
	evaluated += n
	if stochScore > o.cfg.MinScore {
		next.Stochastic = stochParams
	}

	o.mu.Lock()
	o.current = next
	o.scores = scores
	o.lastRun = o.now()
	o.running = false
	result := &Result{
		Parameters: o.current,
		Scores:     scores,
		RunAt:      o.lastRun,
		Evaluated:  evaluated,
	}
	o.mu.Unlock()

	o.log.Info("Optimization run complete",
		"candidates", evaluated,
		"duration", o.now().Sub(started).String(),
		"rsi_score", scores["rsi"],
		"macd_score", scores["macd"],
		"bollinger_score", scores["bollinger"],
		"stochastic_score", scores["stochastic"])

	return result, nil
}

// Scores returns the per-indicator scores from the last run.
func (o *Optimizer) Scores() map[string]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]float64, len(o.scores))
	for k, v := range o.scores {
		out[k] = v
	}
	return out
}

func (o *Optimizer) searchRSI(candles []market.Candle) (indicators.RSIParams, float64, int) {
	closes := market.Closes(candles)
	b := o.cfg.Bounds

	best := indicators.RSIParams{}
	bestScore := 0.0
	found := false
	evaluated := 0

	for period := int(b.RSIPeriod.Min); period <= int(b.RSIPeriod.Max); period += 2 {
		series := indicators.RSISeries(closes, period)
		for overbought := b.RSIOverbought.Min; overbought <= b.RSIOverbought.Max; overbought += 5 {
			for oversold := b.RSIOversold.Min; oversold <= b.RSIOversold.Max; oversold += 5 {
				evaluated++
				score := o.scoreSignals(candles, rsiSignals(series, overbought, oversold), rsiSignalWeight)
				if !found || score > bestScore {
					best = indicators.RSIParams{Period: period, Overbought: overbought, Oversold: oversold}
					bestScore = score
					found = true
				}
			}
		}
	}

	return best, bestScore, evaluated
}

func (o *Optimizer) searchMACD(candles []market.Candle) (indicators.MACDParams, float64, int) {
	closes := market.Closes(candles)
	b := o.cfg.Bounds

	best := indicators.MACDParams{}
	bestScore := 0.0
	found := false
	evaluated := 0

	for fast := int(b.MACDFast.Min); fast <= int(b.MACDFast.Max); fast += 2 {
		for slow := int(b.MACDSlow.Min); slow <= int(b.MACDSlow.Max); slow += 2 {
			if fast >= slow {
				continue
			}
			for sig := int(b.MACDSignal.Min); sig <= int(b.MACDSignal.Max); sig++ {
				evaluated++
				macd, signalLine, _ := indicators.MACDSeries(closes, fast, slow, sig)
				score := o.scoreSignals(candles, macdSignals(macd, signalLine), macdSignalWeight)
				if !found || score > bestScore {
					best = indicators.MACDParams{FastPeriod: fast, SlowPeriod: slow, SignalPeriod: sig}
					bestScore = score
					found = true
				}
			}
		}
	}

	return best, bestScore, evaluated
}

func (o *Optimizer) searchBollinger(candles []market.Candle) (indicators.BollingerParams, float64, int) {
	closes := market.Closes(candles)
	b := o.cfg.Bounds

	best := indicators.BollingerParams{}
	bestScore := 0.0
	found := false
	evaluated := 0

	for period := int(b.BollingerPeriod.Min); period <= int(b.BollingerPeriod.Max); period += 2 {
		for stdDev := b.BollingerStdDev.Min; stdDev <= b.BollingerStdDev.Max; stdDev += 0.25 {
			evaluated++
			upper, _, lower := indicators.BollingerSeries(closes, period, stdDev)
			score := o.scoreSignals(candles, bollingerSignals(closes, upper, lower), bollingerSignalWeight)
			if !found || score > bestScore {
				best = indicators.BollingerParams{Period: period, StdDev: stdDev}
				bestScore = score
				found = true
			}
		}
	}

	return best, bestScore, evaluated
}

func (o *Optimizer) searchStochastic(candles []market.Candle) (indicators.StochasticParams, float64, int) {
	b := o.cfg.Bounds

	best := indicators.StochasticParams{}
	bestScore := 0.0
	found := false
	evaluated := 0

	for kPeriod := int(b.StochasticK.Min); kPeriod <= int(b.StochasticK.Max); kPeriod += 2 {
		for dPeriod := int(b.StochasticD.Min); dPeriod <= int(b.StochasticD.Max); dPeriod++ {
			evaluated++
			k, d := indicators.StochasticSeries(candles, kPeriod, dPeriod)
			score := o.scoreSignals(candles, stochasticSignals(k, d), stochasticSignalWeight)
			if !found || score > bestScore {
				best = indicators.StochasticParams{KPeriod: kPeriod, DPeriod: dPeriod}
				bestScore = score
				found = true
			}
		}
	}

	return best, bestScore, evaluated
}

// scoreSignals measures the realized percentage move over the horizon
// for every signal event, signed by signal direction and scaled by the
// signal-type weight. Returns the mean per-signal score; no events
// means zero, which never beats the acceptance threshold.
func (o *Optimizer) scoreSignals(candles []market.Candle, events []signalEvent, weight float64) float64 {
	if len(events) == 0 {
		return 0.0
	}

	total := 0.0
	scored := 0

	for _, ev := range events {
		exit := ev.index + o.cfg.Horizon
		if exit >= len(candles) {
			continue
		}
		entry := candles[ev.index].Close
		if entry == 0 {
			continue
		}
		movePct := (candles[exit].Close - entry) / entry * 100
		if ev.direction == signal.DirectionDown {
			movePct = -movePct
		}
		total += movePct * weight
		scored++
	}

	if scored == 0 {
		return 0.0
	}
	return total / float64(scored)
}
