package usecase_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/application/usecase"
	"github.com/altlend/decisioning/internal/domain/event"
	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/port"
	"github.com/altlend/decisioning/internal/domain/service"
)

func recomputeJob() port.RecomputeJob {
	return port.RecomputeJob{
		BorrowerID:     "borrower-001",
		FeatureSet:     "borrower_behavior",
		FeatureVersion: "v2",
	}
}

func TestRecomputeFeaturesUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	engine := service.NewFeatureEngine(service.DefaultFeatureEngineConfig(), logger)

	t.Run("recomputes, persists, and announces the vector", func(t *testing.T) {
		store := &mockFeatureStore{}
		publisher := &mockEventPublisher{}
		uc := usecase.NewRecomputeFeaturesUseCase(store, publisher, engine, logger)

		err := uc.Execute(ctx, recomputeJob())
		require.NoError(t, err)

		require.Len(t, store.persisted, 1)
		vector := store.persisted[0]
		assert.Equal(t, "borrower-001", vector.BorrowerID())
		assert.Equal(t, "borrower_behavior", vector.FeatureSet())

		require.Len(t, publisher.published, 1)
		computed, ok := publisher.published[0].(event.FeatureVectorComputed)
		require.True(t, ok)
		assert.Equal(t, "decisioning.feature_vector.computed", computed.EventType())
		assert.Equal(t, "borrower-001", computed.BorrowerID)
		assert.Equal(t, 1.0, computed.QualityScore)
	})

	t.Run("fetch failure fails the job", func(t *testing.T) {
		store := &mockFeatureStore{
			fetchFunc: func(context.Context, string) (model.BorrowerProfile, []model.BehavioralEvent, error) {
				return model.BorrowerProfile{}, nil, fmt.Errorf("event store unreachable")
			},
		}
		uc := usecase.NewRecomputeFeaturesUseCase(store, &mockEventPublisher{}, engine, logger)

		err := uc.Execute(ctx, recomputeJob())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch borrower history")
	})

	t.Run("persistence failure fails the job", func(t *testing.T) {
		store := &mockFeatureStore{
			persistFunc: func(context.Context, model.FeatureVector) error {
				return fmt.Errorf("write timeout")
			},
		}
		uc := usecase.NewRecomputeFeaturesUseCase(store, &mockEventPublisher{}, engine, logger)

		err := uc.Execute(ctx, recomputeJob())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "persist vector")
	})

	t.Run("publish failure is tolerated once the vector is persisted", func(t *testing.T) {
		store := &mockFeatureStore{}
		publisher := &mockEventPublisher{
			publishFunc: func(context.Context, ...event.DomainEvent) error {
				return fmt.Errorf("broker unavailable")
			},
		}
		uc := usecase.NewRecomputeFeaturesUseCase(store, publisher, engine, logger)

		err := uc.Execute(ctx, recomputeJob())
		require.NoError(t, err)
		assert.Len(t, store.persisted, 1)
	})
}
