package model

import "time"

// AuditEntry is a governance trail record attached to a decision. Entries are
// append-only; the primary entry is written atomically with its decision, and
// supplementary entries (degradations, background refreshes) are best-effort.
type AuditEntry struct {
	DecisionID string
	BorrowerID string
	Action     string
	Detail     string
	OccurredAt time.Time
}
