package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/valueobject"
	pkgpostgres "github.com/altlend/decisioning/pkg/postgres"
)

// DecisionRepo implements port.DecisionRepository.
type DecisionRepo struct {
	pool *pgxpool.Pool
}

// NewDecisionRepo creates a repository backed by PostgreSQL.
func NewDecisionRepo(pool *pgxpool.Pool) *DecisionRepo {
	return &DecisionRepo{pool: pool}
}

// Save writes the decision record and its primary audit entry in one
// transaction. A partial write must never exist: a decision without its audit
// trail is not a decision.
func (r *DecisionRepo) Save(ctx context.Context, record model.DecisionRecord) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO decisions (
				id, borrower_id, decision, reasons, credit_score, fraud_score,
				policy_version, feature_set, feature_version, failed_models,
				created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`,
			record.ID(), record.BorrowerID(), record.Decision().String(),
			textArray(record.Reasons()), record.CreditScore(), record.FraudScore().ValuePtr(),
			record.PolicyVersion(), record.FeatureSet(), record.FeatureVersion(),
			textArray(record.FailedModels()), record.CreatedAt(),
		)
		if err != nil {
			return pkgpostgres.NewTransactionError("insert decision", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO decision_audit (decision_id, borrower_id, action, detail, occurred_at)
			VALUES ($1,$2,$3,$4,$5)
		`,
			record.ID(), record.BorrowerID(), "decision_finalized",
			fmt.Sprintf("%s under %s", record.Decision().String(), record.PolicyVersion()),
			record.CreatedAt(),
		)
		if err != nil {
			return pkgpostgres.NewTransactionError("insert primary audit entry", err)
		}
		return nil
	})
}

// FindByID retrieves a single decision record.
func (r *DecisionRepo) FindByID(ctx context.Context, id string) (model.DecisionRecord, error) {
	row := r.pool.QueryRow(ctx, selectDecision+` WHERE id = $1`, id)
	return scanDecision(row)
}

// FindByBorrowerID retrieves a borrower's decisions, newest first.
func (r *DecisionRepo) FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.DecisionRecord, error) {
	rows, err := r.pool.Query(ctx, selectDecision+` WHERE borrower_id = $1 ORDER BY created_at DESC`, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var result []model.DecisionRecord
	for rows.Next() {
		record, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

const selectDecision = `
	SELECT id, borrower_id, decision, reasons, credit_score, fraud_score,
	       policy_version, feature_set, feature_version, failed_models,
	       created_at
	FROM decisions
`

// textArray keeps empty collections as empty arrays on the wire. pgx encodes
// a nil []string as SQL NULL, which the NOT NULL array columns reject.
func textArray(vals []string) []string {
	if vals == nil {
		return []string{}
	}
	return vals
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDecision(s scannable) (model.DecisionRecord, error) {
	var (
		id, borrowerID, decisionStr               string
		reasons, failedModels                     []string
		creditScore                               float64
		fraudScore                                *float64
		policyVersion, featureSet, featureVersion string
		createdAt                                 time.Time
	)
	if err := s.Scan(
		&id, &borrowerID, &decisionStr, &reasons, &creditScore, &fraudScore,
		&policyVersion, &featureSet, &featureVersion, &failedModels, &createdAt,
	); err != nil {
		return model.DecisionRecord{}, fmt.Errorf("scan decision: %w", err)
	}

	decision, err := valueobject.DecisionFromString(decisionStr)
	if err != nil {
		return model.DecisionRecord{}, fmt.Errorf("scan decision: %w", err)
	}

	score := valueobject.AbsentFraudScore()
	if fraudScore != nil {
		score = valueobject.NewFraudScore(*fraudScore)
	}

	return model.ReconstructDecisionRecord(
		id, borrowerID, decision, reasons, creditScore, score,
		policyVersion, featureSet, featureVersion, failedModels, createdAt,
	), nil
}
