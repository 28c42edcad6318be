package filters

import (
	"sort"
	"strings"

	"signal-sniper/internal/analysis"
	"signal-sniper/internal/signal"
)

// Category groups filters by the kind of evidence they provide.
type Category string

const (
	CategoryMomentum   Category = "momentum"
	CategoryTrend      Category = "trend"
	CategoryVolume     Category = "volume"
	CategoryStructure  Category = "structure"
	CategoryVolatility Category = "volatility"
	CategorySMC        Category = "smc"
	CategoryPattern    Category = "pattern"
)

// FilterKey identifies one filter evaluation. Keeping the timeframe
// and filter name as separate typed fields avoids stringly-keyed
// lookups like "5m_rsi".
type FilterKey struct {
	Timeframe string `json:"timeframe"`
	Filter    string `json:"filter"`
}

// FilterResult is the outcome of evaluating one filter on one
// timeframe. A filter that did not pass carries no direction.
type FilterResult struct {
	Name      string           `json:"name"`
	Category  Category         `json:"category"`
	Passed    bool             `json:"passed"`
	Direction signal.Direction `json:"direction,omitempty"`
	Value     float64          `json:"value"`
	Reason    string           `json:"reason"`
	Weight    float64          `json:"weight"`
}

// Snapshot aggregates every filter evaluation for one request.
type Snapshot struct {
	Regime           analysis.MarketRegime       `json:"regime"`
	Results          map[FilterKey]FilterResult  `json:"-"`
	BullishCount     int                         `json:"bullishCount"`
	BearishCount     int                         `json:"bearishCount"`
	Consensus        signal.Direction            `json:"consensus"`
	ConsistencyScore float64                     `json:"consistencyScore"`
	SetupTag         string                      `json:"setupTag"`
	WeightedBullish  float64                     `json:"weightedBullish"`
	WeightedBearish  float64                     `json:"weightedBearish"`
}

// Lookup fetches the result for a timeframe/filter pair.
func (s *Snapshot) Lookup(timeframe, filter string) (FilterResult, bool) {
	r, ok := s.Results[FilterKey{Timeframe: timeframe, Filter: filter}]
	return r, ok
}

// Passed returns every passed result ordered by timeframe then name,
// so callers iterate deterministically.
func (s *Snapshot) Passed() []FilterResult {
	keys := make([]FilterKey, 0, len(s.Results))
	for k, r := range s.Results {
		if r.Passed {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Timeframe != keys[j].Timeframe {
			return keys[i].Timeframe < keys[j].Timeframe
		}
		return keys[i].Filter < keys[j].Filter
	})

	out := make([]FilterResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.Results[k])
	}
	return out
}

// HasPassedWithDirection reports whether any passed filter whose name
// contains the substring agrees with the direction.
func (s *Snapshot) HasPassedWithDirection(nameSubstring string, dir signal.Direction) bool {
	for k, r := range s.Results {
		if !r.Passed {
			continue
		}
		if containsFold(k.Filter, nameSubstring) && r.Direction == dir {
			return true
		}
	}
	return false
}

// HasPassed reports whether any passed filter name contains the
// substring, regardless of direction.
func (s *Snapshot) HasPassed(nameSubstring string) bool {
	for k, r := range s.Results {
		if r.Passed && containsFold(k.Filter, nameSubstring) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
