package service

import (
	"fmt"

	"github.com/altlend/decisioning/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Feature contract validation – pre-condition gate for every consumer
// ---------------------------------------------------------------------------

// FeatureRequirements is a consumer's declaration of the feature schema it was
// built against. Every scoring model and fraud detector carries one.
type FeatureRequirements struct {
	FeatureSet     string
	FeatureVersion string
	Keys           []string
}

// FeatureCompatibilityError reports a mismatch between a consumer's declared
// contract and the vector it was about to receive. It indicates a
// deployment/versioning bug, so it is never recovered locally: the pipeline
// aborts before the consumer runs.
type FeatureCompatibilityError struct {
	Consumer string
	Field    string
	Expected string
	Received string
}

func (e *FeatureCompatibilityError) Error() string {
	return fmt.Sprintf(
		"feature contract violation for consumer %s: %s expected %q, received %q",
		e.Consumer, e.Field, e.Expected, e.Received,
	)
}

// ValidateContract checks, in order: feature set, feature version, required
// keys. The first failing check produces the error. It must be invoked once
// per consumer before that consumer executes; a model silently operating on a
// schema it was not designed for is a correctness bug, not a runtime error to
// recover from.
func ValidateContract(consumer string, vector model.FeatureVector, req FeatureRequirements) error {
	if vector.FeatureSet() != req.FeatureSet {
		return &FeatureCompatibilityError{
			Consumer: consumer,
			Field:    "feature set",
			Expected: req.FeatureSet,
			Received: vector.FeatureSet(),
		}
	}
	if vector.FeatureVersion() != req.FeatureVersion {
		return &FeatureCompatibilityError{
			Consumer: consumer,
			Field:    "feature version",
			Expected: req.FeatureVersion,
			Received: vector.FeatureVersion(),
		}
	}
	for _, key := range req.Keys {
		if !vector.HasKey(key) {
			return &FeatureCompatibilityError{
				Consumer: consumer,
				Field:    "feature key",
				Expected: key,
				Received: "missing",
			}
		}
	}
	return nil
}
