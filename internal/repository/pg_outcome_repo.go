package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

type pgOutcomeRepository struct {
	pool *pgxpool.Pool
}

// NewPgOutcomeRepository returns an OutcomeRepository backed by PostgreSQL.
func NewPgOutcomeRepository(pool *pgxpool.Pool) OutcomeRepository {
	return &pgOutcomeRepository{pool: pool}
}

func (r *pgOutcomeRepository) Record(ctx context.Context, o domain.CaseOutcome) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO case_outcomes
			(case_id, identity, code, outcome, reason, attempts, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.CaseID, o.Identity, o.Code, o.Outcome, o.Reason, o.Attempts, o.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert case outcome: %w", err)
	}
	return nil
}

func (r *pgOutcomeRepository) Recent(ctx context.Context, limit int) ([]domain.CaseOutcome, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT case_id, identity, code, outcome, reason, attempts, finished_at
		FROM case_outcomes
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list case outcomes: %w", err)
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

// ---- helpers ----

func scanOutcomes(rows pgx.Rows) ([]domain.CaseOutcome, error) {
	var result []domain.CaseOutcome
	for rows.Next() {
		var o domain.CaseOutcome
		if err := rows.Scan(
			&o.CaseID, &o.Identity, &o.Code, &o.Outcome,
			&o.Reason, &o.Attempts, &o.FinishedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}
