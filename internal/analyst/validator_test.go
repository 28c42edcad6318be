package analyst

import (
	"context"
	"errors"
	"strings"
	"testing"

	"signal-sniper/internal/filters"
	"signal-sniper/internal/patterns"
	"signal-sniper/internal/signal"
)

type stubProvider struct {
	response string
	err      error
	called   bool
}

func (s *stubProvider) Evaluate(_ context.Context, _, _ string) (string, error) {
	s.called = true
	return s.response, s.err
}

func (s *stubProvider) Name() string { return "stub" }

func bullishInput() Input {
	return Input{
		Symbol: "EURUSD",
		Prediction: &signal.Prediction{
			Direction:  signal.DirectionUp,
			Confidence: 0.8,
			RiskScore:  0.2,
			Features: map[string]float64{
				"rsi":              25,
				"ema9_ema21_ratio": 1.01,
				"macd":             0.5,
			},
		},
		Snapshot: &filters.Snapshot{
			Consensus:        signal.DirectionUp,
			BullishCount:     6,
			BearishCount:     1,
			ConsistencyScore: 85,
		},
		Patterns: &patterns.PatternSummary{Bullish: 2, StrongBullish: 1},
	}
}

// TestRecomputeConfluenceBullish verifies the weighting scheme on a
// fully aligned bullish snapshot.
func TestRecomputeConfluenceBullish(t *testing.T) {
	in := bullishInput()
	conf := RecomputeConfluence(in.Prediction.Features, in.Patterns, in.Snapshot)

	// RSI 2 + EMA 1 + MACD 1 + patterns 2+1 + consensus 1.
	if conf.BullishSignals != 8 {
		t.Errorf("Expected 8 bullish signals, got %d", conf.BullishSignals)
	}
	if conf.BearishSignals != 0 {
		t.Errorf("Expected 0 bearish signals, got %d", conf.BearishSignals)
	}
	if conf.Score != 100 {
		t.Errorf("Expected score 100, got %f", conf.Score)
	}
	if conf.Direction != signal.DirectionUp {
		t.Errorf("Expected UP direction, got %s", conf.Direction)
	}
}

// TestRecomputeConfluenceMixed verifies a split score.
func TestRecomputeConfluenceMixed(t *testing.T) {
	features := map[string]float64{
		"rsi":              25,   // bullish +2
		"ema9_ema21_ratio": 0.99, // bearish +1
		"macd":             -0.3, // bearish +1
	}

	conf := RecomputeConfluence(features, nil, nil)
	if conf.BullishSignals != 2 || conf.BearishSignals != 2 {
		t.Errorf("Expected 2/2 split, got %d/%d", conf.BullishSignals, conf.BearishSignals)
	}
	if conf.Score != 50 {
		t.Errorf("Expected score 50, got %f", conf.Score)
	}
	if conf.Direction != signal.DirectionNeutral {
		t.Errorf("Expected NEUTRAL on tie, got %s", conf.Direction)
	}
}

// TestRecomputeConfluenceEmpty verifies the zero case.
func TestRecomputeConfluenceEmpty(t *testing.T) {
	conf := RecomputeConfluence(nil, nil, nil)
	if conf.Score != 0 {
		t.Errorf("Expected score 0, got %f", conf.Score)
	}
	if conf.Reason() != "Mixed technical signals" {
		t.Errorf("Unexpected reason: %s", conf.Reason())
	}
}

// TestReasonJoinsTopFactors verifies at most three factors are joined.
func TestReasonJoinsTopFactors(t *testing.T) {
	in := bullishInput()
	conf := RecomputeConfluence(in.Prediction.Features, in.Patterns, in.Snapshot)

	reason := conf.Reason()
	if !strings.Contains(reason, "RSI oversold condition") {
		t.Errorf("Expected RSI factor in reason: %s", reason)
	}
	if got := strings.Count(reason, " + "); got != 2 {
		t.Errorf("Expected 3 joined factors, got %d separators: %s", got, reason)
	}
}

// TestValidateWithoutProviderStrongAlignment verifies the rule table
// approves an aligned high-confluence prediction.
func TestValidateWithoutProviderStrongAlignment(t *testing.T) {
	v := NewValidator(DefaultConfig(), nil, nil)

	out := v.Validate(context.Background(), bullishInput())
	if out.Verdict != signal.VerdictYes {
		t.Errorf("Expected YES, got %s", out.Verdict)
	}
	if out.Confidence != 0.8 {
		t.Errorf("Expected confidence 0.8, got %f", out.Confidence)
	}
	if out.ConfluenceScore != 100 {
		t.Errorf("Expected confluence 100, got %f", out.ConfluenceScore)
	}
}

// TestValidateOpposedDirection verifies a contradicted prediction is
// rejected by the rule table.
func TestValidateOpposedDirection(t *testing.T) {
	v := NewValidator(DefaultConfig(), nil, nil)

	in := bullishInput()
	in.Prediction.Direction = signal.DirectionDown

	out := v.Validate(context.Background(), in)
	if out.Verdict != signal.VerdictNo {
		t.Errorf("Expected NO, got %s", out.Verdict)
	}
	if out.Confidence > 0.3 {
		t.Errorf("Expected low confidence, got %f", out.Confidence)
	}
}

// TestValidateWeakConfluenceIsHighRisk verifies thin evidence grades
// HIGH_RISK rather than NO.
func TestValidateWeakConfluenceIsHighRisk(t *testing.T) {
	v := NewValidator(DefaultConfig(), nil, nil)

	in := Input{
		Symbol: "EURUSD",
		Prediction: &signal.Prediction{
			Direction:  signal.DirectionUp,
			Confidence: 0.7,
			Features:   map[string]float64{},
		},
	}

	out := v.Validate(context.Background(), in)
	if out.Verdict != signal.VerdictHighRisk {
		t.Errorf("Expected HIGH_RISK, got %s", out.Verdict)
	}
}

// TestValidateProviderJudgmentUsed verifies a parsable provider
// response flows through.
func TestValidateProviderJudgmentUsed(t *testing.T) {
	provider := &stubProvider{
		response: "VALIDATION: YES\nCONFIDENCE: 0.9\nCONFLUENCE_SCORE: 88\nREASONING: All factors aligned.",
	}
	v := NewValidator(DefaultConfig(), provider, nil)

	out := v.Validate(context.Background(), bullishInput())
	if !provider.called {
		t.Fatal("Expected provider to be called")
	}
	if out.Verdict != signal.VerdictYes {
		t.Errorf("Expected YES, got %s", out.Verdict)
	}
	if out.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %f", out.Confidence)
	}
	if out.ConfluenceScore != 88 {
		t.Errorf("Expected confluence 88, got %f", out.ConfluenceScore)
	}
}

// TestValidateProviderFailureFallsBack verifies transport errors use
// the rule table instead of failing the stage.
func TestValidateProviderFailureFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	v := NewValidator(DefaultConfig(), provider, nil)

	out := v.Validate(context.Background(), bullishInput())
	if out.Verdict != signal.VerdictYes {
		t.Errorf("Expected rule-table YES after provider failure, got %s", out.Verdict)
	}
	if out.ConfluenceScore != 100 {
		t.Errorf("Expected recomputed confluence, got %f", out.ConfluenceScore)
	}
}

// TestValidateUnparsableResponseIsHighRisk verifies the conservative
// default on malformed responses.
func TestValidateUnparsableResponseIsHighRisk(t *testing.T) {
	provider := &stubProvider{response: "Looks great, send it!"}
	v := NewValidator(DefaultConfig(), provider, nil)

	out := v.Validate(context.Background(), bullishInput())
	if out.Verdict != signal.VerdictHighRisk {
		t.Errorf("Expected HIGH_RISK on unparsable response, got %s", out.Verdict)
	}
	if out.ConfluenceScore != 100 {
		t.Errorf("Expected recomputed confluence retained, got %f", out.ConfluenceScore)
	}
}

// TestReconcileOverrulesContradictedApproval verifies a provider YES
// against an opposed recomputed confluence is downgraded.
func TestReconcileOverrulesContradictedApproval(t *testing.T) {
	provider := &stubProvider{
		response: "VALIDATION: YES\nCONFIDENCE: 0.95\nREASONING: Confident long.",
	}
	v := NewValidator(DefaultConfig(), provider, nil)

	in := bullishInput()
	in.Prediction.Direction = signal.DirectionDown

	out := v.Validate(context.Background(), in)
	if out.Verdict != signal.VerdictHighRisk {
		t.Errorf("Expected downgrade to HIGH_RISK, got %s", out.Verdict)
	}
	if out.Confidence > 0.4 {
		t.Errorf("Expected capped confidence, got %f", out.Confidence)
	}
}
