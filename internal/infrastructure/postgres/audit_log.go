package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altlend/decisioning/internal/domain/model"
)

// AuditLog implements port.AuditLog. Supplementary entries are best-effort:
// a failed write degrades to a logged warning and never reaches the caller.
type AuditLog struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditLog creates an audit log backed by PostgreSQL.
func NewAuditLog(pool *pgxpool.Pool, logger *slog.Logger) *AuditLog {
	return &AuditLog{pool: pool, logger: logger}
}

// Record appends a supplementary audit entry.
func (l *AuditLog) Record(ctx context.Context, entry model.AuditEntry) {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO decision_audit (decision_id, borrower_id, action, detail, occurred_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		entry.DecisionID, entry.BorrowerID, entry.Action, entry.Detail, entry.OccurredAt,
	)
	if err != nil {
		l.logger.Warn("audit entry write failed",
			"decision_id", entry.DecisionID,
			"action", entry.Action,
			"error", err,
		)
	}
}
