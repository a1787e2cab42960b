package repository

import (
	"context"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// OutcomeRepository is the append-only journal of how dispatched cases left
// the worker pool. It is an audit trail; queue state is never stored here.
// The pgx implementation is in pg_outcome_repo.go, the in-memory one used in
// tests and DB-less runs is in memory_outcome_repo.go.
type OutcomeRepository interface {
	Record(ctx context.Context, o domain.CaseOutcome) error
	Recent(ctx context.Context, limit int) ([]domain.CaseOutcome, error)
}

// Facility repositories satisfy matcher.FacilitySource:
//
//	FindWithin(ctx, zip, radiusKm) ([]domain.Facility, error)
//
// They live here with the other storage code; the interface is declared by
// its consumer.
