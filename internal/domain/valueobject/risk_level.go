package valueobject

import "fmt"

// RiskLevel is an immutable value object classifying a credit score.
type RiskLevel struct {
	value string
}

var (
	RiskLevelLow    = RiskLevel{value: "LOW"}
	RiskLevelMedium = RiskLevel{value: "MEDIUM"}
	RiskLevelHigh   = RiskLevel{value: "HIGH"}
)

// RiskLevelFromString reconstructs a RiskLevel from its string representation.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case "LOW":
		return RiskLevelLow, nil
	case "MEDIUM":
		return RiskLevelMedium, nil
	case "HIGH":
		return RiskLevelHigh, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %s", s)
	}
}

// RiskLevelFromCreditScore derives the appropriate RiskLevel from a credit
// score in [0,100]. Higher credit scores mean lower risk.
func RiskLevelFromCreditScore(score float64) RiskLevel {
	switch {
	case score >= 70:
		return RiskLevelLow
	case score >= 40:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return r.value
}

// IsZero returns true if the RiskLevel has not been set.
func (r RiskLevel) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskLevel.
func (r RiskLevel) Equal(other RiskLevel) bool {
	return r.value == other.value
}
