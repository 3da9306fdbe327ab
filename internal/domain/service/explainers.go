package service

import (
	"fmt"
	"strings"

	"github.com/altlend/decisioning/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Concrete explainers
// ---------------------------------------------------------------------------

// ScoringFactorExplainer explains weighted-factor credit models. One instance
// is registered per scorer ID; the conversion is identical because both
// scorers emit the same factor shape.
type ScoringFactorExplainer struct {
	componentID string
}

// NewScoringFactorExplainer creates an explainer for the named scorer.
func NewScoringFactorExplainer(componentID string) *ScoringFactorExplainer {
	return &ScoringFactorExplainer{componentID: componentID}
}

// ComponentID implements ModelExplainer.
func (e *ScoringFactorExplainer) ComponentID() string { return e.componentID }

// Explain implements ModelExplainer.
func (e *ScoringFactorExplainer) Explain(_ model.FeatureVector, output ScoringOutput) ComponentExplanation {
	factors := make([]Factor, 0, len(output.Factors))
	for _, f := range output.Factors {
		factors = append(factors, Factor{
			Name:   f.Name,
			Impact: strings.ToLower(f.Impact),
			Weight: f.Weight.InexactFloat64(),
			Detail: fmt.Sprintf("%s scored %.1f of 100 at weight %s", f.Name, f.Score, f.Weight),
		})
	}
	return ComponentExplanation{
		Component: e.componentID,
		Summary: fmt.Sprintf("%s produced %.1f (%s risk)",
			e.componentID, output.Score, output.Risk),
		Confidence: output.Confidence,
		Factors:    factors,
	}
}

// FraudFlagExplainer explains fraud detectors: every raised flag becomes a
// negative factor weighted by the detector's score.
type FraudFlagExplainer struct {
	componentID string
}

// NewFraudFlagExplainer creates an explainer for the named detector.
func NewFraudFlagExplainer(componentID string) *FraudFlagExplainer {
	return &FraudFlagExplainer{componentID: componentID}
}

// ComponentID implements DetectorExplainer.
func (e *FraudFlagExplainer) ComponentID() string { return e.componentID }

// Explain implements DetectorExplainer.
func (e *FraudFlagExplainer) Explain(_ model.FeatureVector, output DetectorOutput) ComponentExplanation {
	factors := make([]Factor, 0, len(output.Flags))
	for i, flag := range output.Flags {
		detail := flag
		if i < len(output.Explanations) {
			detail = output.Explanations[i]
		}
		factors = append(factors, Factor{
			Name:   flag,
			Impact: "negative",
			Weight: output.Score,
			Detail: detail,
		})
	}

	summary := fmt.Sprintf("%s scored %.2f with no flags", e.componentID, output.Score)
	if len(output.Flags) > 0 {
		summary = fmt.Sprintf("%s scored %.2f, flags: %s",
			e.componentID, output.Score, strings.Join(output.Flags, ", "))
	}

	return ComponentExplanation{
		Component:  e.componentID,
		Summary:    summary,
		Confidence: output.Confidence,
		Factors:    factors,
	}
}

// DefaultExplainerRegistry wires the shipped scorers and detectors to their
// explainers. Components added later without a registration here are simply
// omitted from explanations.
func DefaultExplainerRegistry() *ExplainerRegistry {
	return NewExplainerRegistry().
		RegisterModel(NewScoringFactorExplainer(RuleScorerID)).
		RegisterModel(NewScoringFactorExplainer(TrustScorerID)).
		RegisterDetector(NewFraudFlagExplainer(VolumeDetectorID)).
		RegisterDetector(NewFraudFlagExplainer(ConsistencyDetectorID))
}
