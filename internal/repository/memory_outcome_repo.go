package repository

import (
	"context"
	"sync"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// MemoryOutcomeRepository is an in-memory OutcomeRepository used in unit tests
// and when no DATABASE_URL is configured.
type MemoryOutcomeRepository struct {
	mu       sync.RWMutex
	outcomes []domain.CaseOutcome

	// Optional error override, set in tests to simulate failure paths.
	RecordErr error
}

func NewMemoryOutcomeRepository() *MemoryOutcomeRepository {
	return &MemoryOutcomeRepository{}
}

func (m *MemoryOutcomeRepository) Record(_ context.Context, o domain.CaseOutcome) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
	return nil
}

// Recent returns up to limit outcomes, newest first.
func (m *MemoryOutcomeRepository) Recent(_ context.Context, limit int) ([]domain.CaseOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]domain.CaseOutcome, 0, min(limit, len(m.outcomes)))
	for i := len(m.outcomes) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.outcomes[i])
	}
	return result, nil
}

// All returns every recorded outcome in insertion order.
func (m *MemoryOutcomeRepository) All() []domain.CaseOutcome {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.CaseOutcome(nil), m.outcomes...)
}

var _ OutcomeRepository = (*MemoryOutcomeRepository)(nil)
