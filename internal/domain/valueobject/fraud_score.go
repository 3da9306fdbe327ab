package valueobject

import "fmt"

// FraudScore is an immutable value object holding a fraud probability in
// [0,1], or an explicit "absent" sentinel when every detector failed.
// Absent means "fraud status unknown", never "fraud status clean";
// downstream policy must route absent scores to manual review.
type FraudScore struct {
	value   float64
	present bool
}

// NewFraudScore creates a present FraudScore. Values are clamped to [0,1].
func NewFraudScore(v float64) FraudScore {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return FraudScore{value: v, present: true}
}

// AbsentFraudScore returns the explicit "no detector produced a score" sentinel.
func AbsentFraudScore() FraudScore {
	return FraudScore{}
}

// Absent reports whether no fraud score is available.
func (f FraudScore) Absent() bool {
	return !f.present
}

// Value returns the score. Callers must check Absent first; the zero value
// returned for an absent score is not a valid fraud probability.
func (f FraudScore) Value() float64 {
	return f.value
}

// ValuePtr returns the score as a pointer for nullable wire formats,
// nil when absent.
func (f FraudScore) ValuePtr() *float64 {
	if !f.present {
		return nil
	}
	v := f.value
	return &v
}

// String renders the score for reasons and logs.
func (f FraudScore) String() string {
	if !f.present {
		return "absent"
	}
	return fmt.Sprintf("%.2f", f.value)
}

// Equal checks equality with another FraudScore.
func (f FraudScore) Equal(other FraudScore) bool {
	return f.present == other.present && f.value == other.value
}
