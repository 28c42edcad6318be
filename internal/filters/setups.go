package filters

import (
	"sort"
	"strings"

	"signal-sniper/internal/signal"
)

// namedSetup is a recognizable confluence combination. Requires holds
// filter-name substrings that must each match a passed filter agreeing
// with the consensus direction.
type namedSetup struct {
	name     string
	requires []string
}

// Checked in order; the first full match wins.
var namedSetups = []namedSetup{
	{name: "RSI divergence at order block", requires: []string{"divergence", "order_block"}},
	{name: "FVG rejection with volume", requires: []string{"fair_value_gap", "volume_spike"}},
	{name: "Trend continuation breakout", requires: []string{"ema_stack", "adx_trend", "volume_spike"}},
	{name: "Support bounce reversal", requires: []string{"sr_proximity", "candle_pattern"}},
	{name: "Band extreme reversion", requires: []string{"bollinger_width", "rsi"}},
	{name: "Momentum shift cross", requires: []string{"macd_cross", "ema_cross"}},
}

// setupTag names the setup. Named combinations take precedence over
// the generic top-category concatenation.
func (e *Engine) setupTag(snapshot *Snapshot) string {
	dir := snapshot.Consensus
	if dir == signal.DirectionNeutral {
		return "no consensus"
	}

	for _, setup := range namedSetups {
		matched := true
		for _, req := range setup.requires {
			if !snapshot.HasPassedWithDirection(req, dir) {
				matched = false
				break
			}
		}
		if matched {
			return setup.name
		}
	}

	return genericTag(snapshot, dir)
}

// genericTag concatenates the top three categories by weighted
// contribution to the consensus direction.
func genericTag(snapshot *Snapshot, dir signal.Direction) string {
	contributions := make(map[Category]float64)
	for _, r := range snapshot.Results {
		if r.Passed && r.Direction == dir {
			contributions[r.Category] += r.Weight
		}
	}
	if len(contributions) == 0 {
		return "no setup"
	}

	type categoryWeight struct {
		category Category
		weight   float64
	}
	ranked := make([]categoryWeight, 0, len(contributions))
	for c, w := range contributions {
		ranked = append(ranked, categoryWeight{category: c, weight: w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].category < ranked[j].category
	})

	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	names := make([]string, len(ranked))
	for i, cw := range ranked {
		names[i] = string(cw.category)
	}

	side := "long"
	if dir == signal.DirectionDown {
		side = "short"
	}
	return strings.Join(names, "+") + " " + side + " setup"
}
