package analyst

import (
	"context"
	"time"

	"signal-sniper/internal/filters"
	"signal-sniper/internal/logging"
	"signal-sniper/internal/patterns"
	"signal-sniper/internal/reasoning"
	"signal-sniper/internal/signal"
)

// Confluence grade thresholds shared with configuration.
const (
	StrongConfluence   = 70.0
	ModerateConfluence = 50.0
	WeakConfluence     = 30.0
)

// Config controls the validation stage.
type Config struct {
	Timeout           time.Duration
	StrongThreshold   float64
	ModerateThreshold float64
	WeakThreshold     float64
}

// DefaultConfig returns the stock validation settings.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		StrongThreshold:   StrongConfluence,
		ModerateThreshold: ModerateConfluence,
		WeakThreshold:     WeakConfluence,
	}
}

// Input bundles everything the validator inspects for one prediction.
type Input struct {
	Symbol     string
	Prediction *signal.Prediction
	Snapshot   *filters.Snapshot
	Patterns   *patterns.PatternSummary
}

// Validator produces the second-opinion validation verdict. When a
// reasoning provider is available its judgment is reconciled against
// the recomputed confluence; without one the rule table decides alone.
type Validator struct {
	cfg      Config
	provider reasoning.Provider
	log      *logging.Logger
}

// NewValidator builds a validator. provider may be nil.
func NewValidator(cfg Config, provider reasoning.Provider, log *logging.Logger) *Validator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.StrongThreshold == 0 {
		cfg.StrongThreshold = StrongConfluence
	}
	if cfg.ModerateThreshold == 0 {
		cfg.ModerateThreshold = ModerateConfluence
	}
	if cfg.WeakThreshold == 0 {
		cfg.WeakThreshold = WeakConfluence
	}
	if log == nil {
		log = logging.Default()
	}
	return &Validator{
		cfg:      cfg,
		provider: provider,
		log:      log.WithComponent("analyst"),
	}
}

// Validate recomputes confluence and renders a verdict. Provider
// transport failures fall back to the deterministic rule table; an
// unparsable provider response degrades to HIGH_RISK instead.
func (v *Validator) Validate(ctx context.Context, in Input) *signal.Validation {
	conf := RecomputeConfluence(in.Prediction.Features, in.Patterns, in.Snapshot)

	if v.provider == nil {
		return v.ruleValidation(in.Prediction, conf)
	}

	callCtx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	prompt := BuildPrompt(in, conf)
	raw, err := v.provider.Evaluate(callCtx, reasoning.SystemPromptValidation, prompt)
	if err != nil {
		v.log.Warn("Provider unavailable, using rule validation",
			"provider", v.provider.Name(), "error", err.Error())
		return v.ruleValidation(in.Prediction, conf)
	}

	judgment, err := reasoning.ParseValidation(raw)
	if err != nil {
		v.log.Warn("Unparsable provider response, degrading to HIGH_RISK",
			"provider", v.provider.Name(), "error", err.Error())
		return &signal.Validation{
			Verdict:         signal.VerdictHighRisk,
			Confidence:      0.3,
			ConfluenceScore: conf.Score,
			Reasoning:       "Provider response unparsable, conservative default applied",
		}
	}

	return v.reconcile(in.Prediction, conf, judgment)
}

// reconcile merges the provider judgment with the recomputed
// confluence. The provider never gets to overrule a direct technical
// contradiction.
func (v *Validator) reconcile(pred *signal.Prediction, conf Confluence, j *reasoning.ValidationJudgment) *signal.Validation {
	out := &signal.Validation{
		Verdict:         j.Verdict,
		Confidence:      j.Confidence,
		ConfluenceScore: j.ConfluenceScore,
		Reasoning:       j.Reasoning,
	}
	if out.ConfluenceScore == 0 {
		out.ConfluenceScore = conf.Score
	}
	if out.Reasoning == "" {
		out.Reasoning = conf.Reason()
	}

	if out.Verdict == signal.VerdictYes && opposed(pred.Direction, conf.Direction) {
		v.log.Warn("Provider approved against recomputed confluence, downgrading",
			"prediction", string(pred.Direction), "confluence", string(conf.Direction))
		out.Verdict = signal.VerdictHighRisk
		if out.Confidence > 0.4 {
			out.Confidence = 0.4
		}
		out.Reasoning = "Provider approval contradicts recomputed confluence: " + conf.Reason()
	}

	return out
}

// ruleValidation is the deterministic verdict table used when no
// provider judgment is available.
func (v *Validator) ruleValidation(pred *signal.Prediction, conf Confluence) *signal.Validation {
	out := &signal.Validation{
		ConfluenceScore: conf.Score,
		Reasoning:       conf.Reason(),
	}

	aligned := pred.Direction != signal.DirectionNeutral && conf.Direction == pred.Direction

	switch {
	case opposed(pred.Direction, conf.Direction):
		out.Verdict = signal.VerdictNo
		out.Confidence = 0.25
	case aligned && conf.Score >= v.cfg.StrongThreshold:
		out.Verdict = signal.VerdictYes
		out.Confidence = 0.8
	case aligned && conf.Score >= v.cfg.ModerateThreshold:
		out.Verdict = signal.VerdictYes
		out.Confidence = 0.6
	case conf.Score < v.cfg.WeakThreshold:
		out.Verdict = signal.VerdictHighRisk
		out.Confidence = 0.3
	default:
		out.Verdict = signal.VerdictNo
		out.Confidence = 0.4
	}

	return out
}

// BuildPrompt renders the analyst user prompt from the validation
// input plus the recomputed confluence.
func BuildPrompt(in Input, conf Confluence) string {
	vi := reasoning.ValidationInput{
		Symbol:          in.Symbol,
		Direction:       in.Prediction.Direction,
		Confidence:      in.Prediction.Confidence,
		RiskScore:       in.Prediction.RiskScore,
		ConfluenceScore: conf.Score,
		TopReasons:      conf.Factors,
	}
	if in.Snapshot != nil {
		vi.ConsistencyScore = in.Snapshot.ConsistencyScore
		vi.BullishCount = in.Snapshot.BullishCount
		vi.BearishCount = in.Snapshot.BearishCount
		vi.Regime = string(in.Snapshot.Regime)
		vi.SetupTag = in.Snapshot.SetupTag
	}
	return reasoning.BuildValidationPrompt(vi)
}

func opposed(a, b signal.Direction) bool {
	return a != signal.DirectionNeutral && b != signal.DirectionNeutral && a == b.Opposite()
}
