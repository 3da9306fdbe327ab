package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/altlend/decisioning/internal/domain/event"
	"github.com/altlend/decisioning/internal/domain/valueobject"
	"github.com/altlend/decisioning/pkg/events"
)

// ---------------------------------------------------------------------------
// DecisionRecord aggregate root
// ---------------------------------------------------------------------------

// DecisionRecord is the durably persisted outcome of one pipeline invocation.
// It is immutable once written; there are no state transitions after creation.
type DecisionRecord struct {
	id             string
	borrowerID     string
	decision       valueobject.Decision
	reasons        []string
	creditScore    float64
	fraudScore     valueobject.FraudScore
	policyVersion  string
	featureSet     string
	featureVersion string
	failedModels   []string
	createdAt      time.Time
	collector      events.EventCollector
}

// NewDecisionRecord creates a decision record and raises DecisionFinalized.
// Every decision must carry at least one reason; an unexplained outcome is a
// bug, not a degraded result.
func NewDecisionRecord(
	borrowerID string,
	decision valueobject.Decision,
	reasons []string,
	creditScore float64,
	fraudScore valueobject.FraudScore,
	policyVersion, featureSet, featureVersion string,
	failedModels []string,
	now time.Time,
) (DecisionRecord, error) {
	if borrowerID == "" {
		return DecisionRecord{}, errors.New("borrower ID is required")
	}
	if decision.IsZero() {
		return DecisionRecord{}, errors.New("decision is required")
	}
	if len(reasons) == 0 {
		return DecisionRecord{}, errors.New("decision must carry at least one reason")
	}
	if policyVersion == "" {
		return DecisionRecord{}, errors.New("policy version is required")
	}

	id := uuid.New().String()
	rec := DecisionRecord{
		id:             id,
		borrowerID:     borrowerID,
		decision:       decision,
		reasons:        copyStrings(reasons),
		creditScore:    creditScore,
		fraudScore:     fraudScore,
		policyVersion:  policyVersion,
		featureSet:     featureSet,
		featureVersion: featureVersion,
		failedModels:   copyStrings(failedModels),
		createdAt:      now,
	}

	finalized := event.NewDecisionFinalized(
		id, borrowerID, decision.String(),
		creditScore, fraudScore.ValuePtr(),
		policyVersion, rec.Reasons(),
	)
	rec.collector.Record(finalized)
	return rec, nil
}

// ReconstructDecisionRecord rebuilds an aggregate from persistence without
// side-effects.
func ReconstructDecisionRecord(
	id, borrowerID string,
	decision valueobject.Decision,
	reasons []string,
	creditScore float64,
	fraudScore valueobject.FraudScore,
	policyVersion, featureSet, featureVersion string,
	failedModels []string,
	createdAt time.Time,
) DecisionRecord {
	return DecisionRecord{
		id:             id,
		borrowerID:     borrowerID,
		decision:       decision,
		reasons:        copyStrings(reasons),
		creditScore:    creditScore,
		fraudScore:     fraudScore,
		policyVersion:  policyVersion,
		featureSet:     featureSet,
		featureVersion: featureVersion,
		failedModels:   copyStrings(failedModels),
		createdAt:      createdAt,
	}
}

// ID returns the record identifier.
func (r DecisionRecord) ID() string { return r.id }

// BorrowerID returns the borrower the decision applies to.
func (r DecisionRecord) BorrowerID() string { return r.borrowerID }

// Decision returns the terminal outcome.
func (r DecisionRecord) Decision() valueobject.Decision { return r.decision }

// CreditScore returns the aggregated credit score that produced the decision.
func (r DecisionRecord) CreditScore() float64 { return r.creditScore }

// FraudScore returns the fraud score that produced the decision.
func (r DecisionRecord) FraudScore() valueobject.FraudScore { return r.fraudScore }

// PolicyVersion returns the policy version tag in force at decision time.
func (r DecisionRecord) PolicyVersion() string { return r.policyVersion }

// FeatureSet returns the feature set the decision was computed from.
func (r DecisionRecord) FeatureSet() string { return r.featureSet }

// FeatureVersion returns the feature schema version the decision was computed from.
func (r DecisionRecord) FeatureVersion() string { return r.featureVersion }

// CreatedAt returns the decision timestamp.
func (r DecisionRecord) CreatedAt() time.Time { return r.createdAt }

// Reasons returns the ordered, non-empty justification list.
func (r DecisionRecord) Reasons() []string { return copyStrings(r.reasons) }

// FailedModels returns the identifiers of scoring components that failed
// during the run, kept for observability.
func (r DecisionRecord) FailedModels() []string { return copyStrings(r.failedModels) }

// DomainEvents returns the events raised while creating this record.
func (r DecisionRecord) DomainEvents() []event.DomainEvent { return r.collector.Events() }

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
