package service

import (
	"fmt"
	"log/slog"

	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Fraud engine
// ---------------------------------------------------------------------------

// FraudDetector is a single fraud detection strategy. Like credit scorers,
// detectors declare the feature contract they were built against and are
// validated before every invocation.
type FraudDetector interface {
	Name() string
	Requirements() FeatureRequirements
	Evaluate(vector model.FeatureVector) (DetectorOutput, error)
}

// DetectorOutput is one detector's raw result: a fraud probability in [0,1],
// the flags it raised, and explanations referencing feature names only.
type DetectorOutput struct {
	DetectorID   string
	Score        float64
	Flags        []string
	Explanations []string
	Confidence   float64 // [0,1]
}

// FraudResult is the aggregate outcome of one fraud engine run. The score is
// the maximum across surviving detectors; when every detector fails it is
// explicitly absent, never a fabricated default.
type FraudResult struct {
	Score           valueobject.FraudScore
	Flags           []string
	Explanations    []string
	Outputs         []DetectorOutput
	FailedDetectors []string
}

// FraudEngine runs the registered detectors over a validated feature vector.
// Aggregation is max-of-all rather than averaging: fraud signals are
// asymmetric, and one confident flag must not be diluted by several uncertain
// "no fraud" results.
type FraudEngine struct {
	detectors []FraudDetector
	logger    *slog.Logger
}

// NewFraudEngine creates an engine over the given detectors, preserving order.
func NewFraudEngine(logger *slog.Logger, detectors ...FraudDetector) *FraudEngine {
	return &FraudEngine{
		detectors: detectors,
		logger:    logger,
	}
}

// Evaluate validates and invokes every detector with per-detector failure
// isolation. Contract mismatches abort the run; runtime failures are logged
// and excluded. When no detector survives, the returned score is absent and
// the policy engine must treat fraud status as unknown, not clean.
func (e *FraudEngine) Evaluate(vector model.FeatureVector) (FraudResult, error) {
	outputs := make([]DetectorOutput, 0, len(e.detectors))
	var failed []string

	for _, det := range e.detectors {
		if err := ValidateContract(det.Name(), vector, det.Requirements()); err != nil {
			return FraudResult{}, err
		}

		output, err := safeEvaluate(det, vector)
		if err != nil {
			e.logger.Warn("fraud detector failed, excluding from aggregation",
				"detector", det.Name(),
				"error", err,
			)
			failed = append(failed, det.Name())
			continue
		}
		output.DetectorID = det.Name()
		outputs = append(outputs, output)
	}

	if len(outputs) == 0 {
		return FraudResult{
			Score:           valueobject.AbsentFraudScore(),
			FailedDetectors: failed,
		}, nil
	}

	maxScore := 0.0
	var flags, explanations []string
	seen := make(map[string]struct{})
	for _, out := range outputs {
		if out.Score > maxScore {
			maxScore = out.Score
		}
		for _, flag := range out.Flags {
			if _, dup := seen[flag]; dup {
				continue
			}
			seen[flag] = struct{}{}
			flags = append(flags, flag)
		}
		explanations = append(explanations, out.Explanations...)
	}

	return FraudResult{
		Score:           valueobject.NewFraudScore(maxScore),
		Flags:           flags,
		Explanations:    explanations,
		Outputs:         outputs,
		FailedDetectors: failed,
	}, nil
}

// safeEvaluate invokes a detector, converting panics into ordinary failures.
func safeEvaluate(det FraudDetector, vector model.FeatureVector) (output DetectorOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detector %s panicked: %v", det.Name(), r)
		}
	}()
	return det.Evaluate(vector)
}
