package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/altlend/decisioning/internal/domain/model"
)

// ProfileSource loads the identity-level borrower profile.
type ProfileSource interface {
	FetchProfile(ctx context.Context, borrowerID string) (model.BorrowerProfile, error)
}

// VectorSink persists computed feature vectors.
type VectorSink interface {
	PersistVector(ctx context.Context, vector model.FeatureVector) error
}

// StaticTokenProvider serves one provider access token for every borrower.
// Suitable for sandbox environments; production deployments swap in a
// per-borrower token store.
type StaticTokenProvider string

// AccessToken returns the configured token.
func (p StaticTokenProvider) AccessToken(context.Context, string) (string, error) {
	if p == "" {
		return "", errors.New("open banking access token is not configured")
	}
	return string(p), nil
}

// OpenBankingFeatureStore implements port.FeatureStore with borrower
// profiles and persisted vectors in our own tables while raw behavioral
// events come from the borrower's linked open banking accounts.
type OpenBankingFeatureStore struct {
	profiles ProfileSource
	vectors  VectorSink
	source   *OpenBankingEventSource
	lookback time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewOpenBankingFeatureStore composes the store from a profile source, a
// vector sink, and the event source.
func NewOpenBankingFeatureStore(
	profiles ProfileSource,
	vectors VectorSink,
	source *OpenBankingEventSource,
	lookback time.Duration,
	logger *slog.Logger,
) *OpenBankingFeatureStore {
	return &OpenBankingFeatureStore{
		profiles: profiles,
		vectors:  vectors,
		source:   source,
		lookback: lookback,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Fetch loads the profile from our tables and the lookback window of events
// from the provider. The provider's linked-account count supersedes the
// stored one: the provider is authoritative for what is currently linked.
func (s *OpenBankingFeatureStore) Fetch(ctx context.Context, borrowerID string) (model.BorrowerProfile, []model.BehavioralEvent, error) {
	profile, err := s.profiles.FetchProfile(ctx, borrowerID)
	if err != nil {
		return model.BorrowerProfile{}, nil, err
	}

	now := s.now()
	start := now.Add(-s.lookback).Format("2006-01-02")
	end := now.Format("2006-01-02")
	events, err := s.source.Events(ctx, borrowerID, start, end)
	if err != nil {
		return model.BorrowerProfile{}, nil, fmt.Errorf("open banking events: %w", err)
	}

	if count, err := s.source.LinkedAccountCount(ctx, borrowerID); err != nil {
		s.logger.Warn("linked account count unavailable, keeping stored value",
			"borrower_id", borrowerID,
			"error", err,
		)
	} else {
		profile.LinkedAccounts = count
	}

	return profile, events, nil
}

// PersistVector writes the vector through to the underlying sink.
func (s *OpenBankingFeatureStore) PersistVector(ctx context.Context, vector model.FeatureVector) error {
	return s.vectors.PersistVector(ctx, vector)
}
