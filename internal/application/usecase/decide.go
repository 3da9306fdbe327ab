package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/altlend/decisioning/internal/application/dto"
	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/port"
	"github.com/altlend/decisioning/internal/domain/service"
)

// DecideUseCase orchestrates one pipeline run: feature computation, ensemble
// scoring, fraud evaluation, policy application, explanation, and persistence.
type DecideUseCase struct {
	featureStore port.FeatureStore
	decisionRepo port.DecisionRepository
	auditLog     port.AuditLog
	publisher    port.EventPublisher
	taskRunner   port.TaskRunner

	featureEngine *service.FeatureEngine
	ensemble      *service.Ensemble
	fraudEngine   *service.FraudEngine
	policy        *service.PolicyEngine
	aggregator    *service.ExplanationAggregator

	logger *slog.Logger
	now    func() time.Time
}

// NewDecideUseCase wires dependencies.
func NewDecideUseCase(
	featureStore port.FeatureStore,
	decisionRepo port.DecisionRepository,
	auditLog port.AuditLog,
	publisher port.EventPublisher,
	taskRunner port.TaskRunner,
	featureEngine *service.FeatureEngine,
	ensemble *service.Ensemble,
	fraudEngine *service.FraudEngine,
	policy *service.PolicyEngine,
	aggregator *service.ExplanationAggregator,
	logger *slog.Logger,
) *DecideUseCase {
	return &DecideUseCase{
		featureStore:  featureStore,
		decisionRepo:  decisionRepo,
		auditLog:      auditLog,
		publisher:     publisher,
		taskRunner:    taskRunner,
		featureEngine: featureEngine,
		ensemble:      ensemble,
		fraudEngine:   fraudEngine,
		policy:        policy,
		aggregator:    aggregator,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs the full decision pipeline for a borrower. Scoring-path
// failures (CriticalModelFailure, contract violations, persistence errors)
// are hard errors; everything after the record is durably saved - audit
// supplements, event publishing, background refresh - is best-effort.
func (uc *DecideUseCase) Execute(
	ctx context.Context,
	req dto.DecideRequest,
) (dto.DecisionResponse, error) {
	if req.BorrowerID == "" {
		return dto.DecisionResponse{}, errors.New("borrower ID is required")
	}
	request, err := model.NewLoanRequest(
		decimal.NewFromFloat(req.RequestedAmount), req.TermMonths, req.Purpose,
	)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("invalid loan request: %w", err)
	}
	now := uc.now()

	// 1. Fetch raw borrower history. A store failure degrades to "no event
	// data": the engine records the critical warning and the vector's quality
	// collapses, which the policy layer sees through model confidence.
	profile, events, err := uc.featureStore.Fetch(ctx, req.BorrowerID)
	if err != nil {
		uc.logger.Warn("feature store fetch failed, computing on empty history",
			"borrower_id", req.BorrowerID,
			"error", err,
		)
		profile = model.BorrowerProfile{BorrowerID: req.BorrowerID}
		events = nil
	}

	// 2. Compute the feature vector. Never fails.
	vector := uc.featureEngine.Compute(profile, events, now)

	// 3. Persist the vector for auditability; a write failure here must not
	// block the decision.
	if err := uc.featureStore.PersistVector(ctx, vector); err != nil {
		uc.logger.Warn("feature vector persistence failed",
			"borrower_id", req.BorrowerID,
			"error", err,
		)
	}

	// 4. Score the ensemble. Contract violations and total credit-model
	// failure abort the run.
	ensembleResult, err := uc.ensemble.Predict(vector)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("ensemble prediction: %w", err)
	}

	// 5. Evaluate fraud. Only a contract violation aborts; detector failures
	// have already degraded to an absent score inside the engine.
	fraudResult, err := uc.fraudEngine.Evaluate(vector)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("fraud evaluation: %w", err)
	}

	// 6. Apply policy. Deterministic, total.
	decision := uc.policy.Decide(&ensembleResult, &fraudResult)

	// 7. Build the explanation concurrently with record assembly; it only
	// reads already-computed results.
	explanationCh := make(chan service.Explanation, 1)
	go func() {
		explanationCh <- uc.aggregator.Explain(vector, ensembleResult.Results, fraudResult)
	}()

	record, err := model.NewDecisionRecord(
		req.BorrowerID,
		decision.Decision,
		decision.Reasons,
		decision.CreditScore,
		decision.FraudScore,
		decision.PolicyVersion,
		vector.FeatureSet(),
		vector.FeatureVersion(),
		append(ensembleResult.FailedModels, fraudResult.FailedDetectors...),
		now,
	)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("create decision record: %w", err)
	}

	// 8. Persist the record and its primary audit entry atomically. An
	// unpersisted decision must never be reported back as decided.
	if err := uc.decisionRepo.Save(ctx, record); err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("save decision: %w", err)
	}

	explanation := <-explanationCh

	// 9. Supplementary audit entries: requested terms and degradations.
	// Best-effort.
	if request.HasTerms() {
		uc.auditLog.Record(ctx, model.AuditEntry{
			DecisionID: record.ID(),
			BorrowerID: record.BorrowerID(),
			Action:     "application_terms",
			Detail:     request.Describe(),
			OccurredAt: now,
		})
	}
	uc.recordDegradations(ctx, record, ensembleResult, fraudResult, vector, now)

	// 10. Publish domain events. The decision is already durable; publishing
	// failures are logged, not surfaced.
	if err := uc.publisher.Publish(ctx, record.DomainEvents()...); err != nil {
		uc.logger.Warn("event publishing failed",
			"decision_id", record.ID(),
			"error", err,
		)
	}

	// 11. Queue a background feature refresh, strictly after persistence.
	uc.taskRunner.Submit(port.RecomputeJob{
		BorrowerID:     req.BorrowerID,
		FeatureSet:     vector.FeatureSet(),
		FeatureVersion: vector.FeatureVersion(),
	})

	uc.logger.Info("decision finalized",
		"decision_id", record.ID(),
		"borrower_id", req.BorrowerID,
		"decision", record.Decision().String(),
		"credit_score", record.CreditScore(),
		"fraud_score", record.FraudScore().String(),
		"policy_version", record.PolicyVersion(),
	)

	response := toDecisionResponse(record)
	response.FeatureVector = toFeatureVectorResponse(vector)
	response.Explanation = toExplanationResponse(explanation)
	return response, nil
}

// recordDegradations writes supplementary audit entries for partial failures
// that did not stop the pipeline.
func (uc *DecideUseCase) recordDegradations(
	ctx context.Context,
	record model.DecisionRecord,
	ensembleResult service.EnsembleResult,
	fraudResult service.FraudResult,
	vector model.FeatureVector,
	now time.Time,
) {
	if len(ensembleResult.FailedModels) > 0 {
		uc.auditLog.Record(ctx, model.AuditEntry{
			DecisionID: record.ID(),
			BorrowerID: record.BorrowerID(),
			Action:     "model_failure",
			Detail:     "scoring models excluded: " + strings.Join(ensembleResult.FailedModels, ", "),
			OccurredAt: now,
		})
	}
	if len(fraudResult.FailedDetectors) > 0 {
		uc.auditLog.Record(ctx, model.AuditEntry{
			DecisionID: record.ID(),
			BorrowerID: record.BorrowerID(),
			Action:     "detector_failure",
			Detail:     "fraud detectors excluded: " + strings.Join(fraudResult.FailedDetectors, ", "),
			OccurredAt: now,
		})
	}
	if warnings := vector.Warnings(); len(warnings) > 0 {
		uc.auditLog.Record(ctx, model.AuditEntry{
			DecisionID: record.ID(),
			BorrowerID: record.BorrowerID(),
			Action:     "feature_degradation",
			Detail: fmt.Sprintf("quality %.2f, warnings: %s",
				vector.QualityScore(), strings.Join(warnings, ", ")),
			OccurredAt: now,
		})
	}
}

func toDecisionResponse(record model.DecisionRecord) dto.DecisionResponse {
	return dto.DecisionResponse{
		DecisionID:     record.ID(),
		BorrowerID:     record.BorrowerID(),
		Decision:       record.Decision().String(),
		Reasons:        record.Reasons(),
		CreditScore:    record.CreditScore(),
		FraudScore:     record.FraudScore().ValuePtr(),
		PolicyVersion:  record.PolicyVersion(),
		FeatureSet:     record.FeatureSet(),
		FeatureVersion: record.FeatureVersion(),
		FailedModels:   record.FailedModels(),
		CreatedAt:      record.CreatedAt(),
	}
}

func toFeatureVectorResponse(vector model.FeatureVector) *dto.FeatureVectorResponse {
	return &dto.FeatureVectorResponse{
		BorrowerID:       vector.BorrowerID(),
		FeatureSet:       vector.FeatureSet(),
		FeatureVersion:   vector.FeatureVersion(),
		Features:         vector.Features(),
		QualityScore:     vector.QualityScore(),
		Warnings:         vector.Warnings(),
		SourceEventCount: vector.SourceEventCount(),
		ComputedAt:       vector.ComputedAt(),
	}
}

func toExplanationResponse(explanation service.Explanation) *dto.ExplanationResponse {
	factors := make([]dto.FactorResponse, 0, len(explanation.Factors))
	for _, f := range explanation.Factors {
		factors = append(factors, dto.FactorResponse{
			Name:   f.Name,
			Impact: f.Impact,
			Weight: f.Weight,
			Detail: f.Detail,
		})
	}

	components := make([]dto.ComponentExplanationResponse, 0, len(explanation.Components))
	for _, comp := range explanation.Components {
		compFactors := make([]dto.FactorResponse, 0, len(comp.Factors))
		for _, f := range comp.Factors {
			compFactors = append(compFactors, dto.FactorResponse{
				Name:   f.Name,
				Impact: f.Impact,
				Weight: f.Weight,
				Detail: f.Detail,
			})
		}
		components = append(components, dto.ComponentExplanationResponse{
			Component:  comp.Component,
			Summary:    comp.Summary,
			Confidence: comp.Confidence,
			Factors:    compFactors,
		})
	}

	return &dto.ExplanationResponse{
		Summary:    explanation.Summary,
		Confidence: explanation.Confidence,
		Factors:    factors,
		Components: components,
	}
}
