package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFraudScore(t *testing.T) {
	t.Run("present score keeps its value", func(t *testing.T) {
		s := NewFraudScore(0.45)
		assert.False(t, s.Absent())
		assert.Equal(t, 0.45, s.Value())
		require.NotNil(t, s.ValuePtr())
		assert.Equal(t, 0.45, *s.ValuePtr())
		assert.Equal(t, "0.45", s.String())
	})

	t.Run("values are clamped to the unit interval", func(t *testing.T) {
		assert.Equal(t, 1.0, NewFraudScore(3.2).Value())
		assert.Equal(t, 0.0, NewFraudScore(-0.1).Value())
	})

	t.Run("absent is not zero", func(t *testing.T) {
		s := AbsentFraudScore()
		assert.True(t, s.Absent())
		assert.Nil(t, s.ValuePtr())
		assert.Equal(t, "absent", s.String())

		// A detector that genuinely scored zero is distinct from absence.
		zero := NewFraudScore(0)
		assert.False(t, zero.Absent())
		assert.False(t, s.Equal(zero))
	})
}

func TestDecisionFromString(t *testing.T) {
	for _, s := range []string{"approve", "reject", "review"} {
		d, err := DecisionFromString(s)
		require.NoError(t, err)
		assert.Equal(t, s, d.String())
	}

	_, err := DecisionFromString("APPROVE")
	assert.Error(t, err)

	assert.True(t, Decision{}.IsZero())
	assert.False(t, DecisionReview.IsZero())
}

func TestRiskLevelFromCreditScore(t *testing.T) {
	assert.True(t, RiskLevelFromCreditScore(85).Equal(RiskLevelLow))
	assert.True(t, RiskLevelFromCreditScore(70).Equal(RiskLevelLow))
	assert.True(t, RiskLevelFromCreditScore(55).Equal(RiskLevelMedium))
	assert.True(t, RiskLevelFromCreditScore(12).Equal(RiskLevelHigh))
}
