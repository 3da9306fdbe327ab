package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/altlend/decisioning/internal/application/dto"
	"github.com/altlend/decisioning/internal/domain/port"
)

// GetDecisionUseCase retrieves a persisted decision record by ID.
type GetDecisionUseCase struct {
	decisionRepo port.DecisionRepository
}

// NewGetDecisionUseCase wires dependencies.
func NewGetDecisionUseCase(decisionRepo port.DecisionRepository) *GetDecisionUseCase {
	return &GetDecisionUseCase{decisionRepo: decisionRepo}
}

// Execute returns the decision response for the given ID.
func (uc *GetDecisionUseCase) Execute(
	ctx context.Context,
	req dto.GetDecisionRequest,
) (dto.DecisionResponse, error) {
	if req.DecisionID == "" {
		return dto.DecisionResponse{}, errors.New("decision ID is required")
	}
	record, err := uc.decisionRepo.FindByID(ctx, req.DecisionID)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("find decision: %w", err)
	}
	return toDecisionResponse(record), nil
}

// ListDecisionsUseCase retrieves a borrower's decision history.
type ListDecisionsUseCase struct {
	decisionRepo port.DecisionRepository
}

// NewListDecisionsUseCase wires dependencies.
func NewListDecisionsUseCase(decisionRepo port.DecisionRepository) *ListDecisionsUseCase {
	return &ListDecisionsUseCase{decisionRepo: decisionRepo}
}

// Execute returns the borrower's decisions, newest first.
func (uc *ListDecisionsUseCase) Execute(
	ctx context.Context,
	req dto.ListDecisionsRequest,
) ([]dto.DecisionResponse, error) {
	if req.BorrowerID == "" {
		return nil, errors.New("borrower ID is required")
	}
	records, err := uc.decisionRepo.FindByBorrowerID(ctx, req.BorrowerID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}

	responses := make([]dto.DecisionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toDecisionResponse(record))
	}
	return responses, nil
}
