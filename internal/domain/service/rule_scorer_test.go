package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/domain/valueobject"
	"github.com/altlend/decisioning/pkg/testutil"
)

func TestRuleBasedScorer_Score(t *testing.T) {
	scorer := NewRuleBasedScorer()

	t.Run("computes weighted score from behavioral factors", func(t *testing.T) {
		output, err := scorer.Score(testVector(t, nil))
		require.NoError(t, err)

		assert.Equal(t, RuleScorerID, output.ModelID)
		// .35*90 + .30*75 + .20*80 + .15*(900/1460*100)
		assert.InDelta(t, 79.25, output.Score, 0.01)
		assert.Equal(t, valueobject.RiskLevelLow, output.Risk)
		assert.Len(t, output.Factors, 4)
		assert.Equal(t, 0.95, output.Confidence)
	})

	t.Run("strong history scores high", func(t *testing.T) {
		output, err := scorer.Score(testVector(t, map[string]float64{
			"payment_punctuality":    100,
			"activity_consistency":   95,
			"transaction_volume_30d": 20000,
			"account_age_days":       2000,
		}))
		require.NoError(t, err)

		assert.Greater(t, output.Score, 90.0)
		for _, f := range output.Factors {
			assert.Equal(t, "POSITIVE", f.Impact)
		}
	})

	t.Run("thin history scores low with negative factors", func(t *testing.T) {
		output, err := scorer.Score(testVector(t, map[string]float64{
			"payment_punctuality":    20,
			"activity_consistency":   10,
			"transaction_volume_30d": 300,
			"account_age_days":       45,
		}))
		require.NoError(t, err)

		assert.Less(t, output.Score, 40.0)
		assert.Equal(t, valueobject.RiskLevelHigh, output.Risk)
	})

	t.Run("fails when a required feature is absent", func(t *testing.T) {
		vector := vectorWithSchema(t, FeatureSetName, FeatureVersionTag, map[string]float64{
			"activity_consistency":   75,
			"transaction_volume_30d": 8000,
			"account_age_days":       900,
		})

		_, err := scorer.Score(vector)
		testutil.AssertErrorContains(t, err, "payment_punctuality")
	})

	t.Run("confidence tracks vector quality", func(t *testing.T) {
		assert.Equal(t, 0.95, scoringConfidence(1.0))
		assert.InDelta(t, 0.815, scoringConfidence(0.7), 1e-9)
		assert.Equal(t, 0.5, scoringConfidence(0.0))
	})
}

func TestTrustNetworkScorer_Score(t *testing.T) {
	scorer := NewTrustNetworkScorer()

	t.Run("is not credit capable", func(t *testing.T) {
		assert.False(t, scorer.CreditCapable())
		assert.True(t, NewRuleBasedScorer().CreditCapable())
	})

	t.Run("scores tenure and footprint", func(t *testing.T) {
		output, err := scorer.Score(testVector(t, nil))
		require.NoError(t, err)

		assert.Equal(t, TrustScorerID, output.ModelID)
		// .45*(900/1095*100) + .35*50 + .20*75
		assert.InDelta(t, 69.49, output.Score, 0.01)
		assert.Len(t, output.Factors, 3)
	})

	t.Run("established borrower saturates tenure and footprint", func(t *testing.T) {
		output, err := scorer.Score(testVector(t, map[string]float64{
			"account_age_days":     5000,
			"linked_account_count": 9,
			"activity_consistency": 100,
		}))
		require.NoError(t, err)
		assert.Equal(t, 100.0, output.Score)
	})

	t.Run("fails when a required feature is absent", func(t *testing.T) {
		vector := vectorWithSchema(t, FeatureSetName, FeatureVersionTag, map[string]float64{
			"account_age_days":     900,
			"activity_consistency": 75,
		})

		_, err := scorer.Score(vector)
		testutil.AssertErrorContains(t, err, "linked_account_count")
	})
}
