package service

import (
	"github.com/shopspring/decimal"

	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Credit scoring strategies
// ---------------------------------------------------------------------------

// CreditScorer is a single scoring strategy in the ensemble. Implementations
// declare the feature contract they were built against; the ensemble validates
// that contract before every invocation.
type CreditScorer interface {
	Name() string
	// CreditCapable reports whether this model's output can stand alone as a
	// credit score. Non-credit-capable models (trust/network signals) only
	// adjust the aggregate.
	CreditCapable() bool
	Requirements() FeatureRequirements
	Score(vector model.FeatureVector) (ScoringOutput, error)
}

// ScoringFactor is a single weighted input to a scoring model.
type ScoringFactor struct {
	Name   string
	Weight decimal.Decimal
	Impact string // "POSITIVE", "NEUTRAL", "NEGATIVE"
	Score  float64
}

// ScoringOutput is a successful model result: a score in [0,100], its risk
// classification, and the factor breakdown the explainers consume.
type ScoringOutput struct {
	ModelID    string
	Score      float64
	Risk       valueobject.RiskLevel
	Factors    []ScoringFactor
	Confidence float64 // [0,1]
}

// ModelResult is the tagged outcome of one scorer run: either a ScoringOutput
// or an error, never both and never neither. The ensemble produces one per
// registered model so failure handling is enforced by the type instead of by
// call sites remembering to check.
type ModelResult struct {
	modelID string
	output  ScoringOutput
	err     error
}

// SucceededModel wraps a successful scoring output.
func SucceededModel(output ScoringOutput) ModelResult {
	return ModelResult{modelID: output.ModelID, output: output}
}

// FailedModel records a model failure with its cause.
func FailedModel(modelID string, err error) ModelResult {
	return ModelResult{modelID: modelID, err: err}
}

// ModelID returns the model this result belongs to.
func (r ModelResult) ModelID() string {
	return r.modelID
}

// Failed reports whether the model run failed.
func (r ModelResult) Failed() bool {
	return r.err != nil
}

// Output returns the scoring output; ok is false for failed runs.
func (r ModelResult) Output() (ScoringOutput, bool) {
	if r.err != nil {
		return ScoringOutput{}, false
	}
	return r.output, true
}

// Err returns the failure cause, nil for successful runs.
func (r ModelResult) Err() error {
	return r.err
}

// impactLabel classifies a 0-100 factor score for human-readable output.
func impactLabel(score float64) string {
	switch {
	case score >= 70:
		return "POSITIVE"
	case score >= 40:
		return "NEUTRAL"
	default:
		return "NEGATIVE"
	}
}
