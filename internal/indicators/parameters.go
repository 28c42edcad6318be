package indicators

// Range bounds a tunable parameter.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// RSIParams holds RSI tuning.
type RSIParams struct {
	Period     int     `json:"period"`
	Overbought float64 `json:"overbought"`
	Oversold   float64 `json:"oversold"`
}

// MACDParams holds MACD tuning.
type MACDParams struct {
	FastPeriod   int `json:"fast_period"`
	SlowPeriod   int `json:"slow_period"`
	SignalPeriod int `json:"signal_period"`
}

// BollingerParams holds Bollinger Band tuning.
type BollingerParams struct {
	Period int     `json:"period"`
	StdDev float64 `json:"std_dev"`
}

// StochasticParams holds Stochastic Oscillator tuning.
type StochasticParams struct {
	KPeriod int `json:"k_period"`
	DPeriod int `json:"d_period"`
}

// ParameterSet is the complete active indicator configuration. Exactly
// one set is active per process; the optimizer replaces it atomically
// after a successful run and never mutates it in place.
type ParameterSet struct {
	RSI        RSIParams        `json:"rsi"`
	MACD       MACDParams       `json:"macd"`
	Bollinger  BollingerParams  `json:"bollinger"`
	Stochastic StochasticParams `json:"stochastic"`
}

// Bounds declares the searchable range for every tunable parameter.
type Bounds struct {
	RSIPeriod       Range
	RSIOverbought   Range
	RSIOversold     Range
	MACDFast        Range
	MACDSlow        Range
	MACDSignal      Range
	BollingerPeriod Range
	BollingerStdDev Range
	StochasticK     Range
	StochasticD     Range
}

// DefaultBounds returns the standard search space.
func DefaultBounds() Bounds {
	return Bounds{
		RSIPeriod:       Range{Min: 8, Max: 20, Default: 14},
		RSIOverbought:   Range{Min: 65, Max: 80, Default: 70},
		RSIOversold:     Range{Min: 20, Max: 35, Default: 30},
		MACDFast:        Range{Min: 8, Max: 16, Default: 12},
		MACDSlow:        Range{Min: 20, Max: 30, Default: 26},
		MACDSignal:      Range{Min: 7, Max: 11, Default: 9},
		BollingerPeriod: Range{Min: 14, Max: 26, Default: 20},
		BollingerStdDev: Range{Min: 1.5, Max: 2.75, Default: 2.0},
		StochasticK:     Range{Min: 9, Max: 17, Default: 14},
		StochasticD:     Range{Min: 2, Max: 4, Default: 3},
	}
}

// DefaultParameters returns the default active parameter set.
func DefaultParameters() ParameterSet {
	b := DefaultBounds()
	return ParameterSet{
		RSI: RSIParams{
			Period:     int(b.RSIPeriod.Default),
			Overbought: b.RSIOverbought.Default,
			Oversold:   b.RSIOversold.Default,
		},
		MACD: MACDParams{
			FastPeriod:   int(b.MACDFast.Default),
			SlowPeriod:   int(b.MACDSlow.Default),
			SignalPeriod: int(b.MACDSignal.Default),
		},
		Bollinger: BollingerParams{
			Period: int(b.BollingerPeriod.Default),
			StdDev: b.BollingerStdDev.Default,
		},
		Stochastic: StochasticParams{
			KPeriod: int(b.StochasticK.Default),
			DPeriod: int(b.StochasticD.Default),
		},
	}
}
