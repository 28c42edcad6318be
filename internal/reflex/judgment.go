package reflex

import (
	"context"

	"signal-sniper/internal/reasoning"
	"signal-sniper/internal/signal"
)

// Adjustment rule thresholds.
const (
	weakQuantConfidence   = 0.6
	weakAnalystConfidence = 0.5

	volumeConfirmRatio = 1.25

	confluenceBoostLevel     = 60.0
	confluenceDowngradeLevel = 30.0
	confluenceBoostFactor    = 1.1
	confluencePenaltyFactor  = 0.85

	conflictRSIHigh = 75.0
	conflictRSILow  = 25.0
)

// judge requests a quality verdict from the reasoning provider under
// the hard timeout. Any failure path substitutes a deterministic
// judgment and reports fallbackUsed. There is no retry.
func (g *Gate) judge(ctx context.Context, in Input) (*reasoning.QualityJudgment, bool) {
	if g.provider == nil {
		return g.fallbackJudgment(in), true
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.JudgmentTimeout)
	defer cancel()

	prompt := reasoning.BuildQualityPrompt(qualityInput(in))
	raw, err := g.provider.Evaluate(callCtx, reasoning.SystemPromptQuality, prompt)
	if err != nil {
		g.log.Warn("Quality judgment unavailable, using fallback table",
			"provider", g.provider.Name(), "error", err.Error())
		return g.fallbackJudgment(in), true
	}

	judgment, err := reasoning.ParseQuality(raw)
	if err != nil {
		g.log.Warn("Unparsable quality response, substituting FAIR",
			"provider", g.provider.Name(), "error", err.Error())
		return &reasoning.QualityJudgment{
			Quality:    signal.QualityFair,
			Confidence: 50,
			TradeScore: 50,
			Reason:     "Provider response unparsable",
		}, true
	}
	if judgment.Confidence == 0 {
		judgment.Confidence = judgment.TradeScore
	}
	return judgment, false
}

// fallbackJudgment is the deterministic rule table keyed on quant
// confidence, risk score, and analyst confluence.
func (g *Gate) fallbackJudgment(in Input) *reasoning.QualityJudgment {
	confidence := in.Prediction.Confidence
	risk := in.Prediction.RiskScore
	confluence := in.Validation.ConfluenceScore

	var quality signal.Quality
	var score float64
	switch {
	case confidence > 0.8 && risk < 0.3 && confluence > 70:
		quality, score = signal.QualityExcellent, 85
	case confidence > 0.7 && risk < 0.4 && confluence > 60:
		quality, score = signal.QualityGood, 70
	case confidence > 0.6 && risk < 0.5 && confluence > 50:
		quality, score = signal.QualityFair, 55
	default:
		quality, score = signal.QualityPoor, 30
	}

	return &reasoning.QualityJudgment{
		Quality:    quality,
		Confidence: score,
		TradeScore: score,
		Reason:     "Deterministic fallback judgment",
	}
}

func qualityInput(in Input) reasoning.QualityInput {
	qi := reasoning.QualityInput{
		Symbol:            in.Symbol,
		Direction:         in.Prediction.Direction,
		QuantConfidence:   in.Prediction.Confidence,
		RiskScore:         in.Prediction.RiskScore,
		AnalystVerdict:    in.Validation.Verdict,
		AnalystConfidence: in.Validation.Confidence,
		ConfluenceScore:   in.Validation.ConfluenceScore,
		VolumeRatio:       in.VolumeRatio,
	}
	if in.Snapshot != nil {
		qi.SetupTag = in.Snapshot.SetupTag
	}
	return qi
}

// adjust applies the deterministic modulation rules to the raw
// judgment, in order.
func (g *Gate) adjust(in Input, j *reasoning.QualityJudgment) *reasoning.QualityJudgment {
	// Weak agreement between both AI stages.
	if in.Prediction.Confidence < weakQuantConfidence && in.Validation.Confidence < weakAnalystConfidence {
		j.Quality = j.Quality.Downgrade()
		j.Confidence = clamp(j.Confidence, 0, 60)
		j.TradeScore = clamp(j.TradeScore, 0, 60)
	}

	// Volume confirmation.
	if g.cfg.RequireVolumeConfirmation && !volumeConfirmed(in) {
		j.Quality = j.Quality.Downgrade()
		j.TradeScore = clamp(j.TradeScore-10, 0, 100)
	}

	// Confluence tilt.
	confluence := in.Validation.ConfluenceScore
	if confluence >= confluenceBoostLevel {
		j.Confidence = clamp(j.Confidence*confluenceBoostFactor, 0, 100)
		j.TradeScore = clamp(j.TradeScore*confluenceBoostFactor, 0, 100)
	} else if confluence < confluenceDowngradeLevel {
		j.Quality = j.Quality.Downgrade()
		j.Confidence = clamp(j.Confidence*confluencePenaltyFactor, 0, 100)
		j.TradeScore = clamp(j.TradeScore*confluencePenaltyFactor, 0, 100)
	}

	// Conflicting technicals override everything before risk.
	if conflictingSignals(in) {
		j.Quality = signal.QualityPoor
		j.Confidence = clamp(j.Confidence, 0, 20)
		j.TradeScore = clamp(j.TradeScore, 0, 30)
		j.Reason = "Conflicting technical signals"
	}

	// Hard risk override.
	if in.Prediction.RiskScore > maxRiskScore {
		j.Quality = signal.QualityPoor
	}

	return j
}

func volumeConfirmed(in Input) bool {
	return in.VolumeRatio > volumeConfirmRatio || in.VolumeSpike
}

// conflictingSignals flags simultaneous strong bullish and bearish
// patterns, or extreme RSI contradicting the MACD sign.
func conflictingSignals(in Input) bool {
	if in.Patterns != nil && in.Patterns.StrongBullish >= 2 && in.Patterns.StrongBearish >= 2 {
		return true
	}
	if in.RSI >= conflictRSIHigh && in.MACD > 0 {
		return true
	}
	if in.RSI > 0 && in.RSI <= conflictRSILow && in.MACD < 0 {
		return true
	}
	return false
}

// harmonize forces tradeScore into the numeric band of the final
// quality so the two outputs never disagree.
func harmonize(j *reasoning.QualityJudgment) {
	switch j.Quality {
	case signal.QualityExcellent:
		j.TradeScore = clamp(j.TradeScore, 75, 100)
	case signal.QualityGood:
		j.TradeScore = clamp(j.TradeScore, 60, 85)
	case signal.QualityFair:
		j.TradeScore = clamp(j.TradeScore, 40, 65)
	default:
		j.TradeScore = clamp(j.TradeScore, 0, 45)
	}
}

// recommendStake sizes the recommended amount from the base stake and
// the three multipliers.
func (g *Gate) recommendStake(tradeScore, confidence, risk float64) float64 {
	scoreMult := 0.2 + tradeScore/100*1.8  // 0.2-2.0
	confMult := 0.5 + confidence           // 0.5-1.5
	riskMult := 1.0 - risk*0.7             // 0.3-1.0

	mult := clamp(scoreMult*confMult*riskMult, 0.2, 2.0)
	return g.cfg.BaseAmount * mult
}
