package reasoning

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"signal-sniper/internal/signal"
)

// ValidationJudgment is the structured analyst-stage verdict parsed
// from a provider response.
type ValidationJudgment struct {
	Verdict         signal.Verdict
	Confidence      float64 // 0.0-1.0
	ConfluenceScore float64 // 0-100
	Reasoning       string
}

// QualityJudgment is the structured reflex-stage verdict parsed from a
// provider response.
type QualityJudgment struct {
	Quality    signal.Quality
	Confidence float64 // 0-100
	TradeScore float64 // 0-100
	Reason     string
}

// Response labels. Anything not matching these is unparsable and the
// caller substitutes a conservative default, never treats it as
// success.
const (
	labelValidation      = "VALIDATION:"
	labelConfidence      = "CONFIDENCE:"
	labelReasoning       = "REASONING:"
	labelConfluenceScore = "CONFLUENCE_SCORE:"
	labelQuality         = "QUALITY:"
	labelTradeScore      = "TRADE_SCORE:"
	labelReason          = "REASON:"
)

// ParseValidation extracts a validation judgment from labeled response
// text. The VALIDATION and CONFIDENCE labels are required.
func ParseValidation(text string) (*ValidationJudgment, error) {
	fields := extractLabels(text)

	verdictRaw, ok := fields[labelValidation]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s label", signal.ErrParseFailure, labelValidation)
	}
	confidenceRaw, ok := fields[labelConfidence]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s label", signal.ErrParseFailure, labelConfidence)
	}

	var verdict signal.Verdict
	switch strings.ToUpper(strings.TrimSpace(verdictRaw)) {
	case "YES":
		verdict = signal.VerdictYes
	case "NO":
		verdict = signal.VerdictNo
	case "HIGH_RISK", "HIGH RISK":
		verdict = signal.VerdictHighRisk
	default:
		return nil, fmt.Errorf("%w: unrecognized validation %q", signal.ErrParseFailure, verdictRaw)
	}

	confidence, err := parseNumber(confidenceRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: bad confidence %q", signal.ErrParseFailure, confidenceRaw)
	}
	// Providers answer both 0-1 and 0-100 scales.
	if confidence > 1 {
		confidence /= 100
	}

	judgment := &ValidationJudgment{
		Verdict:    verdict,
		Confidence: clamp(confidence, 0, 1),
		Reasoning:  strings.TrimSpace(fields[labelReasoning]),
	}

	if raw, ok := fields[labelConfluenceScore]; ok {
		if score, err := parseNumber(raw); err == nil {
			judgment.ConfluenceScore = clamp(score, 0, 100)
		}
	}

	return judgment, nil
}

// ParseQuality extracts a quality judgment from labeled response text.
// The QUALITY and TRADE_SCORE labels are required.
func ParseQuality(text string) (*QualityJudgment, error) {
	fields := extractLabels(text)

	qualityRaw, ok := fields[labelQuality]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s label", signal.ErrParseFailure, labelQuality)
	}
	scoreRaw, ok := fields[labelTradeScore]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s label", signal.ErrParseFailure, labelTradeScore)
	}

	var quality signal.Quality
	switch strings.ToUpper(strings.TrimSpace(qualityRaw)) {
	case "EXCELLENT":
		quality = signal.QualityExcellent
	case "GOOD":
		quality = signal.QualityGood
	case "FAIR":
		quality = signal.QualityFair
	case "POOR":
		quality = signal.QualityPoor
	default:
		return nil, fmt.Errorf("%w: unrecognized quality %q", signal.ErrParseFailure, qualityRaw)
	}

	score, err := parseNumber(scoreRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: bad trade score %q", signal.ErrParseFailure, scoreRaw)
	}

	judgment := &QualityJudgment{
		Quality:    quality,
		TradeScore: clamp(score, 0, 100),
		Reason:     strings.TrimSpace(fields[labelReason]),
	}

	if raw, ok := fields[labelConfidence]; ok {
		if confidence, err := parseNumber(raw); err == nil {
			if confidence <= 1 {
				// Round away float drift from scaling fractions
				confidence = math.Round(confidence * 100)
			}
			judgment.Confidence = clamp(confidence, 0, 100)
		}
	}

	return judgment, nil
}

// extractLabels scans response lines for known labels. Later
// occurrences win, matching how providers sometimes restate a field.
func extractLabels(text string) map[string]string {
	labels := []string{
		labelValidation, labelConfidence, labelReasoning,
		labelConfluenceScore, labelQuality, labelTradeScore, labelReason,
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		for _, label := range labels {
			if strings.HasPrefix(upper, label) {
				fields[label] = strings.TrimSpace(trimmed[len(label):])
				break
			}
		}
	}
	return fields
}

// parseNumber accepts plain numbers and numbers with trailing
// decoration like "85%" or "0.82 (high)".
func parseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) {
		ch := raw[end]
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' || ch == '+' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(raw[:end], 64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
