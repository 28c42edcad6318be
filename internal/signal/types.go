package signal

import (
	"time"
)

// Direction represents the predicted price direction.
type Direction string

const (
	DirectionUp      Direction = "UP"
	DirectionDown    Direction = "DOWN"
	DirectionNeutral Direction = "NEUTRAL"
)

// Opposite returns the inverse direction. NEUTRAL maps to itself.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	default:
		return DirectionNeutral
	}
}

// Prediction is the quant stage output consumed by the pipeline.
// Immutable once produced.
type Prediction struct {
	Direction  Direction          `json:"direction"`
	Confidence float64            `json:"confidence"` // 0.0-1.0
	RiskScore  float64            `json:"risk_score"` // 0.0-1.0
	Features   map[string]float64 `json:"features,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Verdict is the analyst stage validation outcome.
type Verdict string

const (
	VerdictYes      Verdict = "YES"
	VerdictNo       Verdict = "NO"
	VerdictHighRisk Verdict = "HIGH_RISK"
)

// Validation is the analyst stage output.
type Validation struct {
	Verdict         Verdict `json:"validation"`
	Confidence      float64 `json:"confidence"`       // 0.0-1.0
	ConfluenceScore float64 `json:"confluence_score"` // 0-100
	Reasoning       string  `json:"reasoning"`
}

// Quality classifies a signal's expected edge.
type Quality string

const (
	QualityExcellent Quality = "EXCELLENT"
	QualityGood      Quality = "GOOD"
	QualityFair      Quality = "FAIR"
	QualityPoor      Quality = "POOR"
)

// Downgrade returns the next lower quality level, flooring at POOR.
func (q Quality) Downgrade() Quality {
	switch q {
	case QualityExcellent:
		return QualityGood
	case QualityGood:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Rank returns an ordering value, higher is better.
func (q Quality) Rank() int {
	switch q {
	case QualityExcellent:
		return 3
	case QualityGood:
		return 2
	case QualityFair:
		return 1
	default:
		return 0
	}
}

// SignalStrength labels confidence bands the way the upstream model does.
func SignalStrength(confidence float64) string {
	switch {
	case confidence > 0.85:
		return "very_strong"
	case confidence > 0.75:
		return "strong"
	case confidence > 0.65:
		return "medium"
	default:
		return "weak"
	}
}

// Outcome of the gate evaluation.
type Outcome string

const (
	OutcomeCompleted Outcome = "COMPLETED"
	OutcomeRejected  Outcome = "REJECTED"
)

// Rejection carries a machine-readable code plus a human explanation.
type Rejection struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Rejection reason codes, in pre-flight evaluation order.
const (
	CodeMissingStages        = "MISSING_STAGES"
	CodeHighRiskValidation   = "HIGH_RISK_VALIDATION"
	CodeLowQuantConfidence   = "LOW_QUANT_CONFIDENCE"
	CodeLowAnalystConfidence = "LOW_ANALYST_CONFIDENCE"
	CodeHighRiskScore        = "HIGH_RISK_SCORE"
	CodeLowConfluence        = "LOW_CONFLUENCE"
	CodeDailyLimit           = "DAILY_LIMIT_REACHED"
	CodeConsecutiveLosses    = "CONSECUTIVE_LOSSES"
	CodeCooldownActive       = "COOLDOWN_ACTIVE"
	CodeStaleData            = "STALE_MARKET_DATA"
)

// SignalResult is the terminal pipeline output. It is persisted for
// learning and audit by an external collaborator and never mutated
// after creation.
type SignalResult struct {
	ID                  string     `json:"id"`
	Symbol              string     `json:"symbol,omitempty"`
	Outcome             Outcome    `json:"outcome"`
	Direction           Direction  `json:"direction"`
	SignalQuality       Quality    `json:"signal_quality"`
	TradeScore          float64    `json:"trade_score"` // 0-100
	Confidence          float64    `json:"confidence"`  // 0.0-1.0
	TradeRecommendation string     `json:"trade_recommendation"`
	RecommendedStake    float64    `json:"recommended_stake"`
	RiskAssessment      string     `json:"risk_assessment"`
	SetupTag            string     `json:"setup_tag,omitempty"`
	RejectionReason     *Rejection `json:"rejection_reason,omitempty"`
	FallbackUsed        bool       `json:"fallback_used"`
	Timestamp           time.Time  `json:"timestamp"`
}

// Rejected reports whether the result is a rejection.
func (r *SignalResult) Rejected() bool {
	return r.Outcome == OutcomeRejected
}
