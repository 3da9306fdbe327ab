package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/domain/event"
	"github.com/altlend/decisioning/internal/domain/valueobject"
)

func TestNewDecisionRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates record and raises finalized event", func(t *testing.T) {
		rec, err := NewDecisionRecord(
			"b-1",
			valueobject.DecisionApprove,
			[]string{"credit score 87.0 meets approval threshold 70.0", "fraud score 0.15 below ceiling 0.60"},
			87,
			valueobject.NewFraudScore(0.15),
			"policy-v1", "borrower_behavior", "v2",
			nil,
			now,
		)
		require.NoError(t, err)

		assert.NotEmpty(t, rec.ID())
		assert.True(t, rec.Decision().Equal(valueobject.DecisionApprove))
		assert.Len(t, rec.Reasons(), 2)
		assert.Equal(t, 87.0, rec.CreditScore())
		assert.Equal(t, now, rec.CreatedAt())

		evts := rec.DomainEvents()
		require.Len(t, evts, 1)
		finalized, ok := evts[0].(event.DecisionFinalized)
		require.True(t, ok)
		assert.Equal(t, "approve", finalized.Decision)
		assert.Equal(t, rec.ID(), finalized.AggregateID())
		require.NotNil(t, finalized.FraudScore)
		assert.Equal(t, 0.15, *finalized.FraudScore)
	})

	t.Run("absent fraud score survives the round trip", func(t *testing.T) {
		rec, err := NewDecisionRecord(
			"b-1",
			valueobject.DecisionReview,
			[]string{"fraud detection unavailable — requires manual review"},
			85,
			valueobject.AbsentFraudScore(),
			"policy-v1", "borrower_behavior", "v2",
			[]string{"velocity_detector"},
			now,
		)
		require.NoError(t, err)
		assert.True(t, rec.FraudScore().Absent())
		assert.Equal(t, []string{"velocity_detector"}, rec.FailedModels())

		finalized := rec.DomainEvents()[0].(event.DecisionFinalized)
		assert.Nil(t, finalized.FraudScore)
	})

	t.Run("rejects a record without reasons", func(t *testing.T) {
		_, err := NewDecisionRecord(
			"b-1", valueobject.DecisionReject, nil, 10,
			valueobject.NewFraudScore(0.9), "policy-v1", "borrower_behavior", "v2", nil, now,
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one reason")
	})

	t.Run("rejects missing decision and policy version", func(t *testing.T) {
		_, err := NewDecisionRecord(
			"b-1", valueobject.Decision{}, []string{"r"}, 10,
			valueobject.NewFraudScore(0.9), "policy-v1", "borrower_behavior", "v2", nil, now,
		)
		assert.Error(t, err)

		_, err = NewDecisionRecord(
			"b-1", valueobject.DecisionReject, []string{"r"}, 10,
			valueobject.NewFraudScore(0.9), "", "borrower_behavior", "v2", nil, now,
		)
		assert.Error(t, err)
	})

	t.Run("reconstruct does not raise events", func(t *testing.T) {
		rec := ReconstructDecisionRecord(
			"d-1", "b-1", valueobject.DecisionReject, []string{"fraud score 0.90 exceeds reject threshold 0.80"},
			55, valueobject.NewFraudScore(0.9), "policy-v1", "borrower_behavior", "v2", nil, now,
		)
		assert.Empty(t, rec.DomainEvents())
		assert.Equal(t, "d-1", rec.ID())
	})
}
