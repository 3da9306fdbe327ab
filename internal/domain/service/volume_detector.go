package service

import (
	"fmt"

	"github.com/altlend/decisioning/internal/domain/model"
)

// VolumeDetectorID identifies the transaction-volume fraud detector.
const VolumeDetectorID = "volume_detector"

// Flag codes raised by the volume detector.
const (
	FlagVeryLowVolume    = "very_low_transaction_volume"
	FlagNegligibleVolume = "negligible_transaction_volume"
)

// VolumeDetector flags borrowers whose 30-day transaction volume is
// implausibly low for a loan applicant, a pattern associated with synthetic
// identities and dormant mule accounts.
type VolumeDetector struct {
	// MinVolume is the expected 30-day volume floor.
	MinVolume float64
}

// NewVolumeDetector returns a detector with the given volume floor; a
// non-positive floor falls back to the documented default of 500.
func NewVolumeDetector(minVolume float64) *VolumeDetector {
	if minVolume <= 0 {
		minVolume = 500
	}
	return &VolumeDetector{MinVolume: minVolume}
}

// Name implements FraudDetector.
func (d *VolumeDetector) Name() string { return VolumeDetectorID }

// Requirements implements FraudDetector.
func (d *VolumeDetector) Requirements() FeatureRequirements {
	return FeatureRequirements{
		FeatureSet:     FeatureSetName,
		FeatureVersion: FeatureVersionTag,
		Keys:           []string{"transaction_volume_30d"},
	}
}

// Evaluate implements FraudDetector.
func (d *VolumeDetector) Evaluate(vector model.FeatureVector) (DetectorOutput, error) {
	volume, ok := vector.Feature("transaction_volume_30d")
	if !ok {
		return DetectorOutput{}, fmt.Errorf("transaction_volume_30d missing from vector")
	}

	out := DetectorOutput{
		DetectorID: VolumeDetectorID,
		Score:      0.05,
		Confidence: 0.8,
	}

	if volume < d.MinVolume {
		out.Score = 0.45
		out.Flags = append(out.Flags, FlagVeryLowVolume)
		out.Explanations = append(out.Explanations, fmt.Sprintf(
			"transaction_volume_30d of %.1f is below the expected minimum of %.1f",
			volume, d.MinVolume,
		))
	}
	if volume < d.MinVolume/5 {
		out.Score = 0.65
		out.Flags = append(out.Flags, FlagNegligibleVolume)
		out.Explanations = append(out.Explanations, fmt.Sprintf(
			"transaction_volume_30d of %.1f indicates a near-dormant account",
			volume,
		))
	}

	return out, nil
}
