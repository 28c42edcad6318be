package reasoning

import (
	"fmt"
	"strings"

	"signal-sniper/internal/signal"
)

// System prompts for the two reasoning roles.
const (
	// SystemPromptValidation asks for an independent second opinion on
	// a quantitative prediction.
	SystemPromptValidation = `You are a senior trading analyst validating short-duration directional signals.

You receive a quantitative prediction and the current technical snapshot. Decide whether the prediction is supported by the technical evidence.

Respond ONLY with labeled lines in exactly this format:
VALIDATION: YES | NO | HIGH_RISK
CONFIDENCE: 0.0-1.0
CONFLUENCE_SCORE: 0-100
REASONING: one short sentence

Answer HIGH_RISK when the evidence is contradictory or the risk profile is poor. Be conservative: YES requires clear multi-factor agreement.`

	// SystemPromptQuality asks for a fast final quality grade.
	SystemPromptQuality = `You are a trade quality judge. Grade the signal below.

Respond ONLY with labeled lines in exactly this format:
QUALITY: EXCELLENT | GOOD | FAIR | POOR
CONFIDENCE: 0-100
TRADE_SCORE: 0-100
REASON: one short sentence

EXCELLENT requires strong agreement between prediction confidence, low risk and high confluence. When in doubt, grade lower.`
)

// ValidationInput carries the fields rendered into the validation
// prompt. Numeric only; free-form market commentary is deliberately
// excluded to keep responses parseable.
type ValidationInput struct {
	Symbol           string
	Direction        signal.Direction
	Confidence       float64
	RiskScore        float64
	ConfluenceScore  float64
	ConsistencyScore float64
	BullishCount     int
	BearishCount     int
	Regime           string
	SetupTag         string
	TopReasons       []string
}

// BuildValidationPrompt renders the analyst-stage user prompt.
func BuildValidationPrompt(in ValidationInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Symbol: %s\n", in.Symbol)
	fmt.Fprintf(&b, "Predicted direction: %s\n", in.Direction)
	fmt.Fprintf(&b, "Model confidence: %.2f\n", in.Confidence)
	fmt.Fprintf(&b, "Model risk score: %.2f\n", in.RiskScore)
	fmt.Fprintf(&b, "Recomputed confluence score: %.0f/100\n", in.ConfluenceScore)
	fmt.Fprintf(&b, "Filter consistency: %.0f%%\n", in.ConsistencyScore)
	fmt.Fprintf(&b, "Bullish filters: %d, bearish filters: %d\n", in.BullishCount, in.BearishCount)
	fmt.Fprintf(&b, "Market regime: %s\n", in.Regime)
	if in.SetupTag != "" {
		fmt.Fprintf(&b, "Setup: %s\n", in.SetupTag)
	}
	if len(in.TopReasons) > 0 {
		fmt.Fprintf(&b, "Key factors: %s\n", strings.Join(in.TopReasons, "; "))
	}
	b.WriteString("\nValidate this prediction.")

	return b.String()
}

// QualityInput carries the fields rendered into the quality prompt.
type QualityInput struct {
	Symbol            string
	Direction         signal.Direction
	QuantConfidence   float64
	RiskScore         float64
	AnalystVerdict    signal.Verdict
	AnalystConfidence float64
	ConfluenceScore   float64
	VolumeRatio       float64
	SetupTag          string
}

// BuildQualityPrompt renders the reflex-stage user prompt.
func BuildQualityPrompt(in QualityInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Symbol: %s\n", in.Symbol)
	fmt.Fprintf(&b, "Direction: %s\n", in.Direction)
	fmt.Fprintf(&b, "Quant confidence: %.2f\n", in.QuantConfidence)
	fmt.Fprintf(&b, "Risk score: %.2f\n", in.RiskScore)
	fmt.Fprintf(&b, "Analyst verdict: %s (confidence %.2f)\n", in.AnalystVerdict, in.AnalystConfidence)
	fmt.Fprintf(&b, "Confluence score: %.0f/100\n", in.ConfluenceScore)
	fmt.Fprintf(&b, "Volume ratio: %.2f\n", in.VolumeRatio)
	if in.SetupTag != "" {
		fmt.Fprintf(&b, "Setup: %s\n", in.SetupTag)
	}
	b.WriteString("\nGrade this signal.")

	return b.String()
}
