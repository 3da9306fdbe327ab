package service

import (
	"fmt"

	"github.com/altlend/decisioning/internal/domain/model"
)

// ConsistencyDetectorID identifies the activity-pattern fraud detector.
const ConsistencyDetectorID = "consistency_detector"

// Flag codes raised by the consistency detector.
const (
	FlagErraticActivity     = "erratic_activity_pattern"
	FlagAutomationSuspected = "automation_suspected"
)

// ConsistencyDetector flags activity patterns that do not look like a human
// managing their own finances: highly erratic usage, or machine-regular
// bursts of events.
type ConsistencyDetector struct {
	// ErraticBelow is the activity_consistency score under which usage is
	// considered erratic.
	ErraticBelow float64
	// BurstAbove is the 30-day event count above which regular activity is
	// suspected to be automated.
	BurstAbove float64
}

// NewConsistencyDetector returns a detector with the documented defaults.
func NewConsistencyDetector() *ConsistencyDetector {
	return &ConsistencyDetector{
		ErraticBelow: 25,
		BurstAbove:   2000,
	}
}

// Name implements FraudDetector.
func (d *ConsistencyDetector) Name() string { return ConsistencyDetectorID }

// Requirements implements FraudDetector.
func (d *ConsistencyDetector) Requirements() FeatureRequirements {
	return FeatureRequirements{
		FeatureSet:     FeatureSetName,
		FeatureVersion: FeatureVersionTag,
		Keys:           []string{"activity_consistency", "event_frequency_30d"},
	}
}

// Evaluate implements FraudDetector.
func (d *ConsistencyDetector) Evaluate(vector model.FeatureVector) (DetectorOutput, error) {
	consistency, ok := vector.Feature("activity_consistency")
	if !ok {
		return DetectorOutput{}, fmt.Errorf("activity_consistency missing from vector")
	}
	frequency, ok := vector.Feature("event_frequency_30d")
	if !ok {
		return DetectorOutput{}, fmt.Errorf("event_frequency_30d missing from vector")
	}

	out := DetectorOutput{
		DetectorID: ConsistencyDetectorID,
		Score:      0.05,
		Confidence: 0.7,
	}

	if consistency < d.ErraticBelow && frequency > 0 {
		out.Score = 0.5
		out.Flags = append(out.Flags, FlagErraticActivity)
		out.Explanations = append(out.Explanations, fmt.Sprintf(
			"activity_consistency of %.1f is below the erratic-usage threshold of %.1f",
			consistency, d.ErraticBelow,
		))
	}

	if frequency > d.BurstAbove {
		out.Score = max(out.Score, 0.6)
		out.Flags = append(out.Flags, FlagAutomationSuspected)
		out.Explanations = append(out.Explanations, fmt.Sprintf(
			"event_frequency_30d of %.0f exceeds the automation threshold of %.0f",
			frequency, d.BurstAbove,
		))
	}

	return out, nil
}
