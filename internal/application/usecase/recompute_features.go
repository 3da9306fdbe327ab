package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/altlend/decisioning/internal/domain/event"
	"github.com/altlend/decisioning/internal/domain/port"
	"github.com/altlend/decisioning/internal/domain/service"
)

// RecomputeFeaturesUseCase refreshes a borrower's feature vector in the
// background after a decision. It is invoked by the task runner, never by a
// request path, so every failure is terminal for the job only.
type RecomputeFeaturesUseCase struct {
	featureStore  port.FeatureStore
	publisher     port.EventPublisher
	featureEngine *service.FeatureEngine
	logger        *slog.Logger
	now           func() time.Time
}

// NewRecomputeFeaturesUseCase wires dependencies.
func NewRecomputeFeaturesUseCase(
	featureStore port.FeatureStore,
	publisher port.EventPublisher,
	featureEngine *service.FeatureEngine,
	logger *slog.Logger,
) *RecomputeFeaturesUseCase {
	return &RecomputeFeaturesUseCase{
		featureStore:  featureStore,
		publisher:     publisher,
		featureEngine: featureEngine,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Execute recomputes and persists the borrower's vector, then announces it.
func (uc *RecomputeFeaturesUseCase) Execute(ctx context.Context, job port.RecomputeJob) error {
	profile, events, err := uc.featureStore.Fetch(ctx, job.BorrowerID)
	if err != nil {
		return fmt.Errorf("fetch borrower history: %w", err)
	}

	vector := uc.featureEngine.Compute(profile, events, uc.now())

	if err := uc.featureStore.PersistVector(ctx, vector); err != nil {
		return fmt.Errorf("persist vector: %w", err)
	}

	computed := event.NewFeatureVectorComputed(
		vector.BorrowerID(), vector.FeatureSet(), vector.FeatureVersion(),
		vector.QualityScore(), vector.Warnings(), vector.SourceEventCount(),
	)
	if err := uc.publisher.Publish(ctx, computed); err != nil {
		uc.logger.Warn("feature vector event publishing failed",
			"borrower_id", job.BorrowerID,
			"error", err,
		)
	}

	uc.logger.Info("feature vector refreshed",
		"borrower_id", job.BorrowerID,
		"quality_score", vector.QualityScore(),
		"source_event_count", vector.SourceEventCount(),
	)
	return nil
}
