package event

import (
	"github.com/altlend/decisioning/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Decision events
// ---------------------------------------------------------------------------

// DecisionFinalized is raised when a decision record is created for a
// borrower. It is published only after the record has been durably persisted.
type DecisionFinalized struct {
	events.BaseEvent
	BorrowerID    string   `json:"borrower_id"`
	Decision      string   `json:"decision"`
	CreditScore   float64  `json:"credit_score"`
	FraudScore    *float64 `json:"fraud_score"`
	PolicyVersion string   `json:"policy_version"`
	Reasons       []string `json:"reasons"`
}

// NewDecisionFinalized creates the finalization event for a decision record.
func NewDecisionFinalized(
	decisionID, borrowerID, decision string,
	creditScore float64,
	fraudScore *float64,
	policyVersion string,
	reasons []string,
) DecisionFinalized {
	return DecisionFinalized{
		BaseEvent:     events.NewBaseEvent("decisioning.decision.finalized", decisionID, "DecisionRecord"),
		BorrowerID:    borrowerID,
		Decision:      decision,
		CreditScore:   creditScore,
		FraudScore:    fraudScore,
		PolicyVersion: policyVersion,
		Reasons:       reasons,
	}
}

// ---------------------------------------------------------------------------
// Feature events
// ---------------------------------------------------------------------------

// FeatureVectorComputed is raised when the feature engine produces a vector,
// degraded or not. Consumers use it to monitor data quality drift.
type FeatureVectorComputed struct {
	events.BaseEvent
	BorrowerID       string   `json:"borrower_id"`
	FeatureSet       string   `json:"feature_set"`
	FeatureVersion   string   `json:"feature_version"`
	QualityScore     float64  `json:"quality_score"`
	Warnings         []string `json:"warnings"`
	SourceEventCount int      `json:"source_event_count"`
}

// NewFeatureVectorComputed creates the computation event for a feature vector.
func NewFeatureVectorComputed(
	borrowerID, featureSet, featureVersion string,
	qualityScore float64,
	warnings []string,
	sourceEventCount int,
) FeatureVectorComputed {
	return FeatureVectorComputed{
		BaseEvent:        events.NewBaseEvent("decisioning.feature_vector.computed", borrowerID, "FeatureVector"),
		BorrowerID:       borrowerID,
		FeatureSet:       featureSet,
		FeatureVersion:   featureVersion,
		QualityScore:     qualityScore,
		Warnings:         warnings,
		SourceEventCount: sourceEventCount,
	}
}
