package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GodofWar9000/tele-triage/internal/domain"
	"github.com/GodofWar9000/tele-triage/internal/repository"
)

func TestMemoryOutcomeRepository_RecentNewestFirst(t *testing.T) {
	repo := repository.NewMemoryOutcomeRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, domain.CaseOutcome{
			CaseID:     fmt.Sprintf("case-%d", i),
			Outcome:    domain.OutcomeDelivered,
			FinishedAt: time.Now(),
		}))
	}

	got, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "case-4", got[0].CaseID)
	assert.Equal(t, "case-2", got[2].CaseID)

	all, err := repo.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryOutcomeRepository_RecordErr(t *testing.T) {
	repo := repository.NewMemoryOutcomeRepository()
	repo.RecordErr = fmt.Errorf("disk full")

	assert.Error(t, repo.Record(context.Background(), domain.CaseOutcome{}))
	assert.Empty(t, repo.All())
}
