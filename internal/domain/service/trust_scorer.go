package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/valueobject"
)

// TrustScorerID identifies the trust-network scorer.
const TrustScorerID = "trust_network_scorer"

// TrustNetworkScorer estimates how established a borrower is from account
// tenure and linked-account footprint. It is not credit-capable: its score
// only nudges the ensemble's aggregate, it can never stand alone as a
// credit decision basis.
type TrustNetworkScorer struct {
	// FullTenureDays is the account age treated as fully established.
	FullTenureDays float64
	// FullLinkedAccounts is the linked-account count treated as a complete
	// financial footprint.
	FullLinkedAccounts float64
}

// NewTrustNetworkScorer returns a scorer with the documented defaults.
func NewTrustNetworkScorer() *TrustNetworkScorer {
	return &TrustNetworkScorer{
		FullTenureDays:     3 * 365,
		FullLinkedAccounts: 4,
	}
}

// Name implements CreditScorer.
func (s *TrustNetworkScorer) Name() string { return TrustScorerID }

// CreditCapable implements CreditScorer.
func (s *TrustNetworkScorer) CreditCapable() bool { return false }

// Requirements implements CreditScorer.
func (s *TrustNetworkScorer) Requirements() FeatureRequirements {
	return FeatureRequirements{
		FeatureSet:     FeatureSetName,
		FeatureVersion: FeatureVersionTag,
		Keys: []string{
			"account_age_days",
			"linked_account_count",
			"activity_consistency",
		},
	}
}

// Score implements CreditScorer.
func (s *TrustNetworkScorer) Score(vector model.FeatureVector) (ScoringOutput, error) {
	ageDays, ok := vector.Feature("account_age_days")
	if !ok {
		return ScoringOutput{}, fmt.Errorf("account_age_days missing from vector")
	}
	linked, ok := vector.Feature("linked_account_count")
	if !ok {
		return ScoringOutput{}, fmt.Errorf("linked_account_count missing from vector")
	}
	consistency, ok := vector.Feature("activity_consistency")
	if !ok {
		return ScoringOutput{}, fmt.Errorf("activity_consistency missing from vector")
	}

	tenureScore := clamp(ageDays/s.FullTenureDays*100, 0, 100)
	footprintScore := clamp(linked/s.FullLinkedAccounts*100, 0, 100)

	factors := []ScoringFactor{
		{
			Name:   "account_age_days",
			Weight: decimal.NewFromFloat(0.45),
			Score:  tenureScore,
			Impact: impactLabel(tenureScore),
		},
		{
			Name:   "linked_account_count",
			Weight: decimal.NewFromFloat(0.35),
			Score:  footprintScore,
			Impact: impactLabel(footprintScore),
		},
		{
			Name:   "activity_consistency",
			Weight: decimal.NewFromFloat(0.20),
			Score:  consistency,
			Impact: impactLabel(consistency),
		},
	}

	total := decimal.Zero
	for _, f := range factors {
		total = total.Add(f.Weight.Mul(decimal.NewFromFloat(f.Score)))
	}
	score := clamp(total.InexactFloat64(), 0, 100)

	return ScoringOutput{
		ModelID:    TrustScorerID,
		Score:      score,
		Risk:       valueobject.RiskLevelFromCreditScore(score),
		Factors:    factors,
		Confidence: scoringConfidence(vector.QualityScore()),
	}, nil
}
