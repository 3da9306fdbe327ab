package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/domain/model"
)

var testComputedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testVector builds a borrower_behavior/v2 vector with sane defaults,
// overridden by the supplied features.
func testVector(t *testing.T, overrides map[string]float64) model.FeatureVector {
	t.Helper()

	features := map[string]float64{
		"transaction_volume_30d": 8000,
		"activity_consistency":   75,
		"payment_punctuality":    90,
		"account_age_days":       900,
		"event_frequency_30d":    60,
		"linked_account_count":   2,
	}
	for k, v := range overrides {
		features[k] = v
	}

	vector, err := model.NewFeatureVector(
		"borrower-001", FeatureSetName, FeatureVersionTag,
		features, 1.0, nil, testComputedAt, 60,
	)
	require.NoError(t, err)
	return vector
}

// vectorWithSchema builds a vector with an arbitrary schema for contract tests.
func vectorWithSchema(t *testing.T, set, version string, features map[string]float64) model.FeatureVector {
	t.Helper()
	vector, err := model.NewFeatureVector(
		"borrower-001", set, version, features, 1.0, nil, testComputedAt, 0,
	)
	require.NoError(t, err)
	return vector
}
