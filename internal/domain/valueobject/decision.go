package valueobject

import "fmt"

// Decision is an immutable value object representing the terminal outcome of
// the policy state machine.
type Decision struct {
	value string
}

var (
	DecisionApprove = Decision{value: "approve"}
	DecisionReject  = Decision{value: "reject"}
	DecisionReview  = Decision{value: "review"}
)

// DecisionFromString reconstructs a Decision from its wire representation.
func DecisionFromString(s string) (Decision, error) {
	switch s {
	case "approve":
		return DecisionApprove, nil
	case "reject":
		return DecisionReject, nil
	case "review":
		return DecisionReview, nil
	default:
		return Decision{}, fmt.Errorf("invalid decision: %s", s)
	}
}

// String returns the wire representation ("approve", "reject", "review").
func (d Decision) String() string {
	return d.value
}

// IsZero returns true if the Decision has not been set.
func (d Decision) IsZero() bool {
	return d.value == ""
}

// Equal checks equality with another Decision.
func (d Decision) Equal(other Decision) bool {
	return d.value == other.value
}
