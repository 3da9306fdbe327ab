package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/valueobject"
)

// RuleScorerID identifies the rule-based credit scorer in results, logs,
// and the explainer routing table.
const RuleScorerID = "rule_based_scorer"

// RuleBasedScorer computes a credit score in [0,100] from weighted behavioral
// factors. It is the credit-capable anchor of the ensemble.
//
// Factor weights:
//   - payment punctuality: 35%
//   - activity consistency: 30%
//   - transaction volume: 20%
//   - account age: 15%
type RuleBasedScorer struct {
	// VolumeTarget is the 30-day transaction volume that earns a full
	// volume factor score.
	VolumeTarget float64
	// FullAgeDays is the account age that earns a full age factor score.
	FullAgeDays float64
}

// NewRuleBasedScorer returns a scorer with the documented defaults.
func NewRuleBasedScorer() *RuleBasedScorer {
	return &RuleBasedScorer{
		VolumeTarget: 10000,
		FullAgeDays:  4 * 365,
	}
}

// Name implements CreditScorer.
func (s *RuleBasedScorer) Name() string { return RuleScorerID }

// CreditCapable implements CreditScorer.
func (s *RuleBasedScorer) CreditCapable() bool { return true }

// Requirements implements CreditScorer.
func (s *RuleBasedScorer) Requirements() FeatureRequirements {
	return FeatureRequirements{
		FeatureSet:     FeatureSetName,
		FeatureVersion: FeatureVersionTag,
		Keys: []string{
			"payment_punctuality",
			"activity_consistency",
			"transaction_volume_30d",
			"account_age_days",
		},
	}
}

// Score implements CreditScorer.
func (s *RuleBasedScorer) Score(vector model.FeatureVector) (ScoringOutput, error) {
	punctuality, ok := vector.Feature("payment_punctuality")
	if !ok {
		return ScoringOutput{}, fmt.Errorf("payment_punctuality missing from vector")
	}
	consistency, ok := vector.Feature("activity_consistency")
	if !ok {
		return ScoringOutput{}, fmt.Errorf("activity_consistency missing from vector")
	}
	volume, ok := vector.Feature("transaction_volume_30d")
	if !ok {
		return ScoringOutput{}, fmt.Errorf("transaction_volume_30d missing from vector")
	}
	ageDays, ok := vector.Feature("account_age_days")
	if !ok {
		return ScoringOutput{}, fmt.Errorf("account_age_days missing from vector")
	}

	volumeScore := clamp(volume/s.VolumeTarget*100, 0, 100)
	ageScore := clamp(ageDays/s.FullAgeDays*100, 0, 100)

	factors := []ScoringFactor{
		{
			Name:   "payment_punctuality",
			Weight: decimal.NewFromFloat(0.35),
			Score:  punctuality,
			Impact: impactLabel(punctuality),
		},
		{
			Name:   "activity_consistency",
			Weight: decimal.NewFromFloat(0.30),
			Score:  consistency,
			Impact: impactLabel(consistency),
		},
		{
			Name:   "transaction_volume_30d",
			Weight: decimal.NewFromFloat(0.20),
			Score:  volumeScore,
			Impact: impactLabel(volumeScore),
		},
		{
			Name:   "account_age_days",
			Weight: decimal.NewFromFloat(0.15),
			Score:  ageScore,
			Impact: impactLabel(ageScore),
		},
	}

	total := decimal.Zero
	for _, f := range factors {
		total = total.Add(f.Weight.Mul(decimal.NewFromFloat(f.Score)))
	}
	score := clamp(total.InexactFloat64(), 0, 100)

	return ScoringOutput{
		ModelID:    RuleScorerID,
		Score:      score,
		Risk:       valueobject.RiskLevelFromCreditScore(score),
		Factors:    factors,
		Confidence: scoringConfidence(vector.QualityScore()),
	}, nil
}

// scoringConfidence derives model confidence from the vector's data quality.
// Even perfect data never yields full confidence; a fully degraded vector
// still carries the floor so explanations remain comparable.
func scoringConfidence(quality float64) float64 {
	return 0.5 + 0.45*quality
}
