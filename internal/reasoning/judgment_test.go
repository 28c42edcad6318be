package reasoning

import (
	"errors"
	"strings"
	"testing"

	"signal-sniper/internal/signal"
)

// TestParseValidationWellFormed parses a canonical response.
func TestParseValidationWellFormed(t *testing.T) {
	text := `VALIDATION: YES
CONFIDENCE: 0.82
CONFLUENCE_SCORE: 74
REASONING: Momentum and structure agree on the long side.`

	j, err := ParseValidation(text)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	if j.Verdict != signal.VerdictYes {
		t.Errorf("Expected YES verdict, got %s", j.Verdict)
	}
	if j.Confidence != 0.82 {
		t.Errorf("Expected confidence 0.82, got %f", j.Confidence)
	}
	if j.ConfluenceScore != 74 {
		t.Errorf("Expected confluence 74, got %f", j.ConfluenceScore)
	}
	if j.Reasoning == "" {
		t.Error("Expected reasoning text")
	}
}

// TestParseValidationPercentScale verifies 0-100 confidences are
// normalized.
func TestParseValidationPercentScale(t *testing.T) {
	text := "VALIDATION: HIGH_RISK\nCONFIDENCE: 65%"

	j, err := ParseValidation(text)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	if j.Verdict != signal.VerdictHighRisk {
		t.Errorf("Expected HIGH_RISK, got %s", j.Verdict)
	}
	if j.Confidence != 0.65 {
		t.Errorf("Expected normalized confidence 0.65, got %f", j.Confidence)
	}
}

// TestParseValidationMissingLabels verifies unlabeled prose fails.
func TestParseValidationMissingLabels(t *testing.T) {
	cases := []string{
		"The signal looks good to me, I would take it.",
		"CONFIDENCE: 0.9",
		"VALIDATION: YES",
		"",
	}

	for _, text := range cases {
		if _, err := ParseValidation(text); !errors.Is(err, signal.ErrParseFailure) {
			t.Errorf("Expected ErrParseFailure for %q, got %v", text, err)
		}
	}
}

// TestParseValidationUnknownVerdict verifies garbage verdicts fail.
func TestParseValidationUnknownVerdict(t *testing.T) {
	text := "VALIDATION: MAYBE\nCONFIDENCE: 0.5"
	if _, err := ParseValidation(text); !errors.Is(err, signal.ErrParseFailure) {
		t.Errorf("Expected ErrParseFailure, got %v", err)
	}
}

// TestParseQualityWellFormed parses a canonical response.
func TestParseQualityWellFormed(t *testing.T) {
	text := `QUALITY: GOOD
CONFIDENCE: 72
TRADE_SCORE: 68
REASON: Solid confluence but volume is average.`

	j, err := ParseQuality(text)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	if j.Quality != signal.QualityGood {
		t.Errorf("Expected GOOD, got %s", j.Quality)
	}
	if j.Confidence != 72 {
		t.Errorf("Expected confidence 72, got %f", j.Confidence)
	}
	if j.TradeScore != 68 {
		t.Errorf("Expected trade score 68, got %f", j.TradeScore)
	}
}

// TestParseQualityFractionalConfidence verifies 0-1 confidences scale
// up to the 0-100 convention.
func TestParseQualityFractionalConfidence(t *testing.T) {
	text := "QUALITY: FAIR\nCONFIDENCE: 0.55\nTRADE_SCORE: 50"

	j, err := ParseQuality(text)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	if j.Confidence != 55 {
		t.Errorf("Expected confidence 55, got %f", j.Confidence)
	}
}

// TestParseQualityMissingScore verifies required labels.
func TestParseQualityMissingScore(t *testing.T) {
	text := "QUALITY: EXCELLENT\nCONFIDENCE: 90"
	if _, err := ParseQuality(text); !errors.Is(err, signal.ErrParseFailure) {
		t.Errorf("Expected ErrParseFailure, got %v", err)
	}
}

// TestParseQualityClampsScore verifies out-of-range scores clamp.
func TestParseQualityClampsScore(t *testing.T) {
	text := "QUALITY: EXCELLENT\nTRADE_SCORE: 140"

	j, err := ParseQuality(text)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	if j.TradeScore != 100 {
		t.Errorf("Expected clamped trade score 100, got %f", j.TradeScore)
	}
}

// TestBuildValidationPrompt spot-checks the rendered fields.
func TestBuildValidationPrompt(t *testing.T) {
	prompt := BuildValidationPrompt(ValidationInput{
		Symbol:          "EURUSD",
		Direction:       signal.DirectionUp,
		Confidence:      0.8,
		RiskScore:       0.2,
		ConfluenceScore: 70,
		Regime:          "TRENDING",
		SetupTag:        "Trend continuation breakout",
	})

	for _, want := range []string{"EURUSD", "UP", "0.80", "70/100", "TRENDING", "Trend continuation breakout"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
}
