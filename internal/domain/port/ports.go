package port

import (
	"context"

	"github.com/altlend/decisioning/internal/domain/event"
	"github.com/altlend/decisioning/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Feature store port (driven/secondary adapter)
// ---------------------------------------------------------------------------

// FeatureStore retrieves borrower raw material and persists computed vectors.
// Fetch failures are treated by the pipeline as "no events available", never
// as scoring-path errors.
type FeatureStore interface {
	Fetch(ctx context.Context, borrowerID string) (model.BorrowerProfile, []model.BehavioralEvent, error)
	PersistVector(ctx context.Context, vector model.FeatureVector) error
}

// ---------------------------------------------------------------------------
// Repository ports
// ---------------------------------------------------------------------------

// DecisionRepository persists and retrieves decision records. Save writes the
// record and its primary audit entry atomically; a failure here is a hard
// error because an unpersisted decision must not be reported as successful.
type DecisionRepository interface {
	Save(ctx context.Context, record model.DecisionRecord) error
	FindByID(ctx context.Context, id string) (model.DecisionRecord, error)
	FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.DecisionRecord, error)
}

// AuditLog records supplementary audit entries. It never fails the caller;
// implementations degrade write failures to a logged warning.
type AuditLog interface {
	Record(ctx context.Context, entry model.AuditEntry)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Background task port
// ---------------------------------------------------------------------------

// RecomputeJob asks for a borrower's feature vector to be refreshed in the
// background after a decision has been persisted.
type RecomputeJob struct {
	BorrowerID     string
	FeatureSet     string
	FeatureVersion string
}

// TaskRunner accepts fire-and-forget background jobs. Submit is non-blocking
// and best-effort; job failures are logged by the runner and never propagate
// back to the submitting request.
type TaskRunner interface {
	Submit(job RecomputeJob)
}
