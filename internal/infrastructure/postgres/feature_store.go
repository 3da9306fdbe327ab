package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/altlend/decisioning/internal/domain/model"
)

// FeatureStore implements port.FeatureStore against the borrower history and
// feature vector tables.
type FeatureStore struct {
	pool *pgxpool.Pool
}

// NewFeatureStore creates a store backed by PostgreSQL.
func NewFeatureStore(pool *pgxpool.Pool) *FeatureStore {
	return &FeatureStore{pool: pool}
}

// FetchProfile loads the identity-level borrower profile on its own, for
// callers that source raw events elsewhere.
func (s *FeatureStore) FetchProfile(ctx context.Context, borrowerID string) (model.BorrowerProfile, error) {
	var profile model.BorrowerProfile
	err := s.pool.QueryRow(ctx, `
		SELECT borrower_id, account_opened_at, linked_accounts, region
		FROM borrower_profiles
		WHERE borrower_id = $1
	`, borrowerID).Scan(
		&profile.BorrowerID, &profile.AccountOpenedAt,
		&profile.LinkedAccounts, &profile.Region,
	)
	if err != nil {
		return model.BorrowerProfile{}, fmt.Errorf("fetch borrower profile: %w", err)
	}
	return profile, nil
}

// Fetch loads the borrower profile and raw behavioral events. A missing
// profile is an error; the caller decides whether to degrade.
func (s *FeatureStore) Fetch(ctx context.Context, borrowerID string) (model.BorrowerProfile, []model.BehavioralEvent, error) {
	profile, err := s.FetchProfile(ctx, borrowerID)
	if err != nil {
		return model.BorrowerProfile{}, nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT event_id, borrower_id, event_type, amount, occurred_at, on_time
		FROM behavioral_events
		WHERE borrower_id = $1
		ORDER BY occurred_at DESC
	`, borrowerID)
	if err != nil {
		return model.BorrowerProfile{}, nil, fmt.Errorf("query behavioral events: %w", err)
	}
	defer rows.Close()

	events := make([]model.BehavioralEvent, 0, 64)
	for rows.Next() {
		var (
			evt       model.BehavioralEvent
			eventType string
			amount    decimal.Decimal
		)
		if err := rows.Scan(
			&evt.EventID, &evt.BorrowerID, &eventType,
			&amount, &evt.OccurredAt, &evt.OnTime,
		); err != nil {
			return model.BorrowerProfile{}, nil, fmt.Errorf("scan behavioral event: %w", err)
		}
		evt.Type = model.BehavioralEventType(eventType)
		evt.Amount = amount
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return model.BorrowerProfile{}, nil, fmt.Errorf("iterate behavioral events: %w", err)
	}

	return profile, events, nil
}

// PersistVector upserts the latest vector per (borrower, set, version) and
// keeps the features payload as JSONB for ad-hoc quality analysis.
func (s *FeatureStore) PersistVector(ctx context.Context, vector model.FeatureVector) error {
	features, err := json.Marshal(vector.Features())
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO feature_vectors (
			borrower_id, feature_set, feature_version, features,
			quality_score, warnings, source_event_count, computed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (borrower_id, feature_set, feature_version) DO UPDATE SET
			features           = EXCLUDED.features,
			quality_score      = EXCLUDED.quality_score,
			warnings           = EXCLUDED.warnings,
			source_event_count = EXCLUDED.source_event_count,
			computed_at        = EXCLUDED.computed_at
	`,
		vector.BorrowerID(), vector.FeatureSet(), vector.FeatureVersion(),
		features, vector.QualityScore(), vector.Warnings(),
		vector.SourceEventCount(), vector.ComputedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("persist feature vector: %w", err)
	}
	return nil
}

// LatestVector returns the stored vector for a borrower and schema, used by
// quality dashboards rather than the decision path.
func (s *FeatureStore) LatestVector(ctx context.Context, borrowerID, featureSet, featureVersion string) (model.FeatureVector, error) {
	var (
		payload          []byte
		qualityScore     float64
		warnings         []string
		sourceEventCount int
		computedAt       time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT features, quality_score, warnings, source_event_count, computed_at
		FROM feature_vectors
		WHERE borrower_id = $1 AND feature_set = $2 AND feature_version = $3
	`, borrowerID, featureSet, featureVersion).Scan(
		&payload, &qualityScore, &warnings, &sourceEventCount, &computedAt,
	)
	if err != nil {
		return model.FeatureVector{}, fmt.Errorf("fetch feature vector: %w", err)
	}

	features := make(map[string]float64)
	if err := json.Unmarshal(payload, &features); err != nil {
		return model.FeatureVector{}, fmt.Errorf("unmarshal features: %w", err)
	}

	return model.NewFeatureVector(
		borrowerID, featureSet, featureVersion,
		features, qualityScore, warnings, computedAt, sourceEventCount,
	)
}
