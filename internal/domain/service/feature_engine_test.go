package service

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/domain/model"
)

func testProfile() model.BorrowerProfile {
	return model.BorrowerProfile{
		BorrowerID:      "borrower-001",
		AccountOpenedAt: testComputedAt.AddDate(-2, 0, 0),
		LinkedAccounts:  2,
	}
}

func testEvents(now time.Time) []model.BehavioralEvent {
	events := make([]model.BehavioralEvent, 0, 40)
	for day := 1; day <= 20; day++ {
		occurred := now.AddDate(0, 0, -day)
		events = append(events, model.BehavioralEvent{
			EventID:    "txn",
			BorrowerID: "borrower-001",
			Type:       model.EventTypeTransaction,
			Amount:     decimal.NewFromInt(250),
			OccurredAt: occurred,
		})
		events = append(events, model.BehavioralEvent{
			EventID:    "pay",
			BorrowerID: "borrower-001",
			Type:       model.EventTypePayment,
			Amount:     decimal.NewFromInt(50),
			OccurredAt: occurred,
			OnTime:     day%5 != 0, // 16 of 20 on time
		})
	}
	return events
}

func newTestFeatureEngine() *FeatureEngine {
	return NewFeatureEngine(DefaultFeatureEngineConfig(), slog.Default())
}

func TestFeatureEngine_Compute(t *testing.T) {
	engine := newTestFeatureEngine()
	now := testComputedAt

	t.Run("clean history yields full quality", func(t *testing.T) {
		vector := engine.Compute(testProfile(), testEvents(now), now)

		assert.Equal(t, FeatureSetName, vector.FeatureSet())
		assert.Equal(t, FeatureVersionTag, vector.FeatureVersion())
		assert.Equal(t, 1.0, vector.QualityScore())
		assert.Empty(t, vector.Warnings())
		assert.Equal(t, 40, vector.SourceEventCount())

		volume, ok := vector.Feature("transaction_volume_30d")
		require.True(t, ok)
		assert.Equal(t, 5000.0, volume)

		punctuality, ok := vector.Feature("payment_punctuality")
		require.True(t, ok)
		assert.Equal(t, 80.0, punctuality)

		age, ok := vector.Feature("account_age_days")
		require.True(t, ok)
		assert.InDelta(t, 730, age, 2)

		linked, ok := vector.Feature("linked_account_count")
		require.True(t, ok)
		assert.Equal(t, 2.0, linked)
	})

	t.Run("key set is fixed regardless of input quality", func(t *testing.T) {
		degraded := engine.Compute(model.BorrowerProfile{BorrowerID: "b"}, nil, now)
		clean := engine.Compute(testProfile(), testEvents(now), now)
		assert.Equal(t, clean.Keys(), degraded.Keys())
		assert.Equal(t, engine.Keys(), clean.Keys())
	})

	t.Run("nil events degrade to defaults with critical warning", func(t *testing.T) {
		vector := engine.Compute(testProfile(), nil, now)

		assert.Equal(t, 0.0, vector.QualityScore())
		assert.Contains(t, vector.Warnings(), WarnNoEventData)
		assert.Equal(t, 0, vector.SourceEventCount())

		volume, _ := vector.Feature("transaction_volume_30d")
		assert.Equal(t, 0.0, volume)

		// account age derives from the profile and still computes.
		age, _ := vector.Feature("account_age_days")
		assert.Greater(t, age, 0.0)
	})

	t.Run("per-feature failure applies default and warning", func(t *testing.T) {
		// No payment events: payment_punctuality cannot compute.
		var txnOnly []model.BehavioralEvent
		for _, evt := range testEvents(now) {
			if evt.Type == model.EventTypeTransaction {
				txnOnly = append(txnOnly, evt)
			}
		}
		vector := engine.Compute(testProfile(), txnOnly, now)

		punctuality, ok := vector.Feature("payment_punctuality")
		require.True(t, ok)
		assert.Equal(t, 0.0, punctuality)
		assert.Contains(t, vector.Warnings(), WarnFeatureDefaulted+":payment_punctuality")
		assert.Equal(t, 0.7, vector.QualityScore())
	})

	t.Run("two minor warnings degrade quality to 0.6", func(t *testing.T) {
		// Unknown account opening date and no payments: two defaulted features.
		profile := model.BorrowerProfile{BorrowerID: "borrower-001"}
		var txnOnly []model.BehavioralEvent
		for _, evt := range testEvents(now) {
			if evt.Type == model.EventTypeTransaction {
				txnOnly = append(txnOnly, evt)
			}
		}
		vector := engine.Compute(profile, txnOnly, now)

		assert.Len(t, vector.Warnings(), 2)
		assert.Equal(t, 0.6, vector.QualityScore())
	})

	t.Run("events outside the lookback window are ignored", func(t *testing.T) {
		stale := []model.BehavioralEvent{{
			Type:       model.EventTypeTransaction,
			Amount:     decimal.NewFromInt(99999),
			OccurredAt: now.AddDate(0, -3, 0),
		}}
		vector := engine.Compute(testProfile(), stale, now)

		volume, _ := vector.Feature("transaction_volume_30d")
		assert.Equal(t, 0.0, volume)
		assert.Equal(t, 0, vector.SourceEventCount())
	})

	t.Run("event ceiling truncates and warns", func(t *testing.T) {
		small := NewFeatureEngine(FeatureEngineConfig{
			LookbackWindow: 30 * 24 * time.Hour,
			MaxEvents:      10,
		}, slog.Default())

		vector := small.Compute(testProfile(), testEvents(now), now)
		assert.Equal(t, 10, vector.SourceEventCount())
		assert.Contains(t, vector.Warnings(), WarnEventWindowTruncated)
	})

	t.Run("features are clamped to declared ranges", func(t *testing.T) {
		huge := []model.BehavioralEvent{{
			Type:       model.EventTypeTransaction,
			Amount:     decimal.NewFromFloat(5e9),
			OccurredAt: now.AddDate(0, 0, -1),
		}}
		vector := engine.Compute(testProfile(), huge, now)

		volume, _ := vector.Feature("transaction_volume_30d")
		assert.Equal(t, 1e9, volume)
	})

	t.Run("never panics on malformed profile", func(t *testing.T) {
		vector := engine.Compute(model.BorrowerProfile{}, nil, now)
		assert.Equal(t, "unknown", vector.BorrowerID())
		assert.Equal(t, 0.0, vector.QualityScore())
	})
}
