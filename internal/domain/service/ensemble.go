package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/altlend/decisioning/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Model ensemble
// ---------------------------------------------------------------------------

// CriticalModelFailure aborts the pipeline: every credit-capable model failed,
// so no credit decision has a basis. This is the one case where the ensemble
// does not degrade gracefully.
type CriticalModelFailure struct {
	FailedModels []string
}

func (e *CriticalModelFailure) Error() string {
	return fmt.Sprintf(
		"all credit-capable models failed, no basis for a credit decision: %s",
		strings.Join(e.FailedModels, ", "),
	)
}

// EnsembleResult is the aggregate outcome of one ensemble run.
type EnsembleResult struct {
	// CreditScore is the aggregated score in [0,100].
	CreditScore float64
	// Results holds one tagged result per registered model, in registration
	// order, for explainability and observability.
	Results []ModelResult
	// FailedModels lists the identifiers of models that failed this run.
	FailedModels []string
}

// Ensemble runs the registered scoring strategies over a validated feature
// vector and aggregates the surviving outputs into one credit score. The set
// of strategies is fixed at construction.
type Ensemble struct {
	scorers []CreditScorer
	logger  *slog.Logger

	// TrustAdjustmentRate scales how strongly non-credit-capable signals
	// shift the base score: each point of distance from the neutral 50
	// moves the aggregate by this fraction of a point.
	TrustAdjustmentRate float64
}

// NewEnsemble creates an ensemble over the given strategies. Order is
// preserved: it determines result ordering and keeps aggregation
// deterministic.
func NewEnsemble(logger *slog.Logger, scorers ...CreditScorer) *Ensemble {
	return &Ensemble{
		scorers:             scorers,
		logger:              logger,
		TrustAdjustmentRate: 0.1,
	}
}

// Predict validates and invokes every registered model, isolating individual
// failures, and aggregates the survivors.
//
// A FeatureCompatibilityError from pre-validation aborts the whole run: a
// contract mismatch is a deployment bug, not a per-model accident. A model
// that fails at runtime is logged, marked failed, and excluded from
// aggregation; it is never treated as a zero score.
func (e *Ensemble) Predict(vector model.FeatureVector) (EnsembleResult, error) {
	results := make([]ModelResult, 0, len(e.scorers))
	var failed []string

	for _, scorer := range e.scorers {
		if err := ValidateContract(scorer.Name(), vector, scorer.Requirements()); err != nil {
			return EnsembleResult{}, err
		}

		output, err := safeScore(scorer, vector)
		if err != nil {
			e.logger.Warn("scoring model failed, excluding from aggregation",
				"model", scorer.Name(),
				"error", err,
			)
			results = append(results, FailedModel(scorer.Name(), err))
			failed = append(failed, scorer.Name())
			continue
		}
		results = append(results, SucceededModel(output))
	}

	base, creditSurvivors := e.creditBase(results)
	if creditSurvivors == 0 {
		return EnsembleResult{}, &CriticalModelFailure{FailedModels: failed}
	}

	score := clamp(e.applyAdjustments(base, results), 0, 100)

	return EnsembleResult{
		CreditScore:  score,
		Results:      results,
		FailedModels: failed,
	}, nil
}

// creditBase averages the surviving credit-capable outputs.
func (e *Ensemble) creditBase(results []ModelResult) (float64, int) {
	var sum float64
	var count int
	for i, r := range results {
		output, ok := r.Output()
		if !ok || !e.scorers[i].CreditCapable() {
			continue
		}
		sum += output.Score
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// applyAdjustments folds surviving non-credit-capable signals into the base.
func (e *Ensemble) applyAdjustments(base float64, results []ModelResult) float64 {
	score := base
	for i, r := range results {
		output, ok := r.Output()
		if !ok || e.scorers[i].CreditCapable() {
			continue
		}
		score += (output.Score - 50) * e.TrustAdjustmentRate
	}
	return score
}

// safeScore invokes a scorer, converting panics into ordinary model failures
// so one misbehaving strategy can never abort the run.
func safeScore(scorer CreditScorer, vector model.FeatureVector) (output ScoringOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model %s panicked: %v", scorer.Name(), r)
		}
	}()
	return scorer.Score(vector)
}
