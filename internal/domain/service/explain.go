package service

import (
	"fmt"
	"sort"

	"github.com/altlend/decisioning/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Explainability aggregator
// ---------------------------------------------------------------------------

// Factor is one named contribution to the final explanation. Factors reference
// feature names only; raw event data never surfaces here, which is the
// governance boundary between event storage and anything user-visible.
type Factor struct {
	Name   string
	Impact string // "positive", "neutral", "negative"
	Weight float64
	Detail string
}

// ComponentExplanation is the explanation contributed by a single model or
// detector.
type ComponentExplanation struct {
	Component  string
	Summary    string
	Confidence float64
	Factors    []Factor
}

// Explanation is the merged, ranked, deduplicated explanation for one
// pipeline run.
type Explanation struct {
	Summary    string
	Confidence float64
	Factors    []Factor
	Components []ComponentExplanation
}

// ModelExplainer converts a scoring model's raw output into factors.
type ModelExplainer interface {
	ComponentID() string
	Explain(vector model.FeatureVector, output ScoringOutput) ComponentExplanation
}

// DetectorExplainer converts a fraud detector's raw output into factors.
type DetectorExplainer interface {
	ComponentID() string
	Explain(vector model.FeatureVector, output DetectorOutput) ComponentExplanation
}

// ExplainerRegistry routes component outputs to explainers by identity match.
// Build it once at process start and treat it as immutable afterwards; the
// pipeline receives it by injection, never through package-level state.
type ExplainerRegistry struct {
	models    map[string]ModelExplainer
	detectors map[string]DetectorExplainer
}

// NewExplainerRegistry creates an empty registry.
func NewExplainerRegistry() *ExplainerRegistry {
	return &ExplainerRegistry{
		models:    make(map[string]ModelExplainer),
		detectors: make(map[string]DetectorExplainer),
	}
}

// RegisterModel adds a model explainer, keyed by its component ID.
func (r *ExplainerRegistry) RegisterModel(e ModelExplainer) *ExplainerRegistry {
	r.models[e.ComponentID()] = e
	return r
}

// RegisterDetector adds a detector explainer, keyed by its component ID.
func (r *ExplainerRegistry) RegisterDetector(e DetectorExplainer) *ExplainerRegistry {
	r.detectors[e.ComponentID()] = e
	return r
}

// ExplanationAggregator merges per-component explanations into one ranked
// result. Components without a matching explainer are omitted without error.
type ExplanationAggregator struct {
	registry *ExplainerRegistry
}

// NewExplanationAggregator creates an aggregator over the given registry.
func NewExplanationAggregator(registry *ExplainerRegistry) *ExplanationAggregator {
	return &ExplanationAggregator{registry: registry}
}

// Explain routes each surviving model and detector output to its explainer,
// merges the factor lists (deduplicating by name, keeping the highest-weight
// instance), ranks by absolute weight descending, and averages component
// confidences into an overall confidence.
func (a *ExplanationAggregator) Explain(
	vector model.FeatureVector,
	modelResults []ModelResult,
	fraud FraudResult,
) Explanation {
	var components []ComponentExplanation

	for _, result := range modelResults {
		output, ok := result.Output()
		if !ok {
			continue
		}
		explainer, ok := a.registry.models[result.ModelID()]
		if !ok {
			continue
		}
		components = append(components, explainer.Explain(vector, output))
	}

	for _, output := range fraud.Outputs {
		explainer, ok := a.registry.detectors[output.DetectorID]
		if !ok {
			continue
		}
		components = append(components, explainer.Explain(vector, output))
	}

	factors := mergeFactors(components)
	confidence := meanConfidence(components)

	return Explanation{
		Summary:    a.summarize(modelResults, fraud, factors),
		Confidence: confidence,
		Factors:    factors,
		Components: components,
	}
}

// mergeFactors deduplicates by factor name, keeping the highest-weight
// instance, and ranks by absolute weight descending with name as the
// deterministic tiebreak.
func mergeFactors(components []ComponentExplanation) []Factor {
	byName := make(map[string]Factor)
	for _, comp := range components {
		for _, f := range comp.Factors {
			existing, ok := byName[f.Name]
			if !ok || absFloat(f.Weight) > absFloat(existing.Weight) {
				byName[f.Name] = f
			}
		}
	}

	merged := make([]Factor, 0, len(byName))
	for _, f := range byName {
		merged = append(merged, f)
	}
	sort.Slice(merged, func(i, j int) bool {
		wi, wj := absFloat(merged[i].Weight), absFloat(merged[j].Weight)
		if wi != wj {
			return wi > wj
		}
		return merged[i].Name < merged[j].Name
	})
	return merged
}

func meanConfidence(components []ComponentExplanation) float64 {
	if len(components) == 0 {
		return 0
	}
	sum := 0.0
	for _, comp := range components {
		sum += comp.Confidence
	}
	return sum / float64(len(components))
}

func (a *ExplanationAggregator) summarize(
	modelResults []ModelResult,
	fraud FraudResult,
	factors []Factor,
) string {
	var creditScore float64
	var haveScore bool
	for _, r := range modelResults {
		if out, ok := r.Output(); ok && out.ModelID == RuleScorerID {
			creditScore = out.Score
			haveScore = true
			break
		}
	}

	var positives, negatives int
	for _, f := range factors {
		switch f.Impact {
		case "positive":
			positives++
		case "negative":
			negatives++
		}
	}

	scorePart := "credit score unavailable"
	if haveScore {
		scorePart = fmt.Sprintf("credit score %.1f", creditScore)
	}

	fraudPart := "fraud score " + fraud.Score.String()
	if len(fraud.Flags) > 0 {
		fraudPart = fmt.Sprintf("%s with %d fraud flag(s)", fraudPart, len(fraud.Flags))
	}

	return fmt.Sprintf("%s, %s; %d positive and %d negative factors",
		scorePart, fraudPart, positives, negatives)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
