package model

import (
	"errors"
	"sort"
	"time"
)

// ---------------------------------------------------------------------------
// FeatureVector – versioned, bounded numeric representation of a borrower
// ---------------------------------------------------------------------------

// FeatureVector is immutable once computed. The (featureSet, featureVersion)
// pair fixes the key set: any two vectors sharing the pair carry exactly the
// same feature names.
type FeatureVector struct {
	borrowerID       string
	featureSet       string
	featureVersion   string
	features         map[string]float64
	qualityScore     float64
	warnings         []string
	computedAt       time.Time
	sourceEventCount int
}

// NewFeatureVector constructs a vector. The features map and warnings slice
// are copied so later mutation by the caller cannot leak in.
func NewFeatureVector(
	borrowerID, featureSet, featureVersion string,
	features map[string]float64,
	qualityScore float64,
	warnings []string,
	computedAt time.Time,
	sourceEventCount int,
) (FeatureVector, error) {
	if borrowerID == "" {
		return FeatureVector{}, errors.New("borrower ID is required")
	}
	if featureSet == "" || featureVersion == "" {
		return FeatureVector{}, errors.New("feature set and version are required")
	}
	if qualityScore < 0 || qualityScore > 1 {
		return FeatureVector{}, errors.New("quality score must be in [0,1]")
	}

	copied := make(map[string]float64, len(features))
	for k, v := range features {
		copied[k] = v
	}
	warningsCopy := make([]string, len(warnings))
	copy(warningsCopy, warnings)

	return FeatureVector{
		borrowerID:       borrowerID,
		featureSet:       featureSet,
		featureVersion:   featureVersion,
		features:         copied,
		qualityScore:     qualityScore,
		warnings:         warningsCopy,
		computedAt:       computedAt,
		sourceEventCount: sourceEventCount,
	}, nil
}

// BorrowerID returns the borrower this vector was computed for.
func (v FeatureVector) BorrowerID() string { return v.borrowerID }

// FeatureSet returns the feature set name.
func (v FeatureVector) FeatureSet() string { return v.featureSet }

// FeatureVersion returns the feature schema version tag.
func (v FeatureVector) FeatureVersion() string { return v.featureVersion }

// QualityScore returns the composite data-quality score in [0,1].
func (v FeatureVector) QualityScore() float64 { return v.qualityScore }

// SourceEventCount returns how many raw events fed the computation.
func (v FeatureVector) SourceEventCount() int { return v.sourceEventCount }

// ComputedAt returns the computation timestamp.
func (v FeatureVector) ComputedAt() time.Time { return v.computedAt }

// Warnings returns the ordered quality-warning codes.
func (v FeatureVector) Warnings() []string {
	out := make([]string, len(v.warnings))
	copy(out, v.warnings)
	return out
}

// Feature returns the named feature value and whether the key exists.
func (v FeatureVector) Feature(name string) (float64, bool) {
	val, ok := v.features[name]
	return val, ok
}

// HasKey reports whether the named feature is present.
func (v FeatureVector) HasKey(name string) bool {
	_, ok := v.features[name]
	return ok
}

// Keys returns the feature names in sorted order so consumers iterate
// deterministically.
func (v FeatureVector) Keys() []string {
	keys := make([]string, 0, len(v.features))
	for k := range v.features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Features returns a copy of the name→value mapping.
func (v FeatureVector) Features() map[string]float64 {
	out := make(map[string]float64, len(v.features))
	for k, val := range v.features {
		out[k] = val
	}
	return out
}
