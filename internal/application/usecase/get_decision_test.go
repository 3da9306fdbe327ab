package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/application/dto"
	"github.com/altlend/decisioning/internal/application/usecase"
	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/valueobject"
)

func storedRecord(id, borrowerID string) model.DecisionRecord {
	return model.ReconstructDecisionRecord(
		id, borrowerID,
		valueobject.DecisionApprove,
		[]string{"credit score 87.0 meets approval threshold 70.0"},
		87.0,
		valueobject.NewFraudScore(0.15),
		"policy-v1", "borrower_behavior", "v2",
		nil,
		time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	)
}

func TestGetDecisionUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored decision", func(t *testing.T) {
		repo := &mockDecisionRepository{
			findByIDFunc: func(_ context.Context, id string) (model.DecisionRecord, error) {
				return storedRecord(id, "borrower-001"), nil
			},
		}
		uc := usecase.NewGetDecisionUseCase(repo)

		resp, err := uc.Execute(ctx, dto.GetDecisionRequest{DecisionID: "dec-123"})
		require.NoError(t, err)

		assert.Equal(t, "dec-123", resp.DecisionID)
		assert.Equal(t, "borrower-001", resp.BorrowerID)
		assert.Equal(t, "approve", resp.Decision)
		assert.Equal(t, 87.0, resp.CreditScore)
		require.NotNil(t, resp.FraudScore)
		assert.Equal(t, 0.15, *resp.FraudScore)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := &mockDecisionRepository{
			findByIDFunc: func(context.Context, string) (model.DecisionRecord, error) {
				return model.DecisionRecord{}, fmt.Errorf("decision not found")
			},
		}
		uc := usecase.NewGetDecisionUseCase(repo)

		_, err := uc.Execute(ctx, dto.GetDecisionRequest{DecisionID: "missing"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "find decision")
	})

	t.Run("requires a decision ID", func(t *testing.T) {
		uc := usecase.NewGetDecisionUseCase(&mockDecisionRepository{})

		_, err := uc.Execute(ctx, dto.GetDecisionRequest{})
		require.Error(t, err)
	})
}

func TestListDecisionsUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the borrower's history", func(t *testing.T) {
		repo := &mockDecisionRepository{
			findByBorrowerIDFunc: func(_ context.Context, borrowerID string) ([]model.DecisionRecord, error) {
				return []model.DecisionRecord{
					storedRecord("dec-2", borrowerID),
					storedRecord("dec-1", borrowerID),
				}, nil
			},
		}
		uc := usecase.NewListDecisionsUseCase(repo)

		resps, err := uc.Execute(ctx, dto.ListDecisionsRequest{BorrowerID: "borrower-001"})
		require.NoError(t, err)

		require.Len(t, resps, 2)
		assert.Equal(t, "dec-2", resps[0].DecisionID)
		assert.Equal(t, "dec-1", resps[1].DecisionID)
	})

	t.Run("empty history yields an empty list", func(t *testing.T) {
		uc := usecase.NewListDecisionsUseCase(&mockDecisionRepository{})

		resps, err := uc.Execute(ctx, dto.ListDecisionsRequest{BorrowerID: "borrower-new"})
		require.NoError(t, err)
		assert.Empty(t, resps)
	})

	t.Run("requires a borrower ID", func(t *testing.T) {
		uc := usecase.NewListDecisionsUseCase(&mockDecisionRepository{})

		_, err := uc.Execute(ctx, dto.ListDecisionsRequest{})
		require.Error(t, err)
	})
}
