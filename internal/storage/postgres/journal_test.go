package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/simulation"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

func summary(name string, finished time.Time, lines ...string) *simulation.Summary {
	return &simulation.Summary{
		ID:         uuid.New(),
		Name:       name,
		Outcome:    simulation.OutcomeVictory,
		Winner:     "player",
		Rounds:     4,
		Survivors:  []string{"Mara"},
		Log:        lines,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
	}
}

func TestJournal_RecordAndRead(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	repo := postgres.NewJournalRepository(pc.Pool.DB())
	ctx := context.Background()

	s := summary("bridge", time.Now().UTC().Truncate(time.Millisecond), "Round 1 begins.", "Mara attacks.", "Bandit falls!")
	require.NoError(t, repo.Record(ctx, s))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "bridge", got.Name)
	assert.Equal(t, "victory", got.Outcome)
	assert.Equal(t, "player", got.Winner)
	assert.Equal(t, 4, got.Rounds)
	assert.Equal(t, []string{"Mara"}, got.Survivors)
	assert.True(t, s.FinishedAt.Equal(got.FinishedAt))

	lines, err := repo.Log(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Log, lines)
}

func TestJournal_DuplicateRollsBack(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	repo := postgres.NewJournalRepository(pc.Pool.DB())
	ctx := context.Background()

	s := summary("once", time.Now().UTC(), "a")
	require.NoError(t, repo.Record(ctx, s))
	s.Log = []string{"b", "c"}
	assert.Error(t, repo.Record(ctx, s))

	lines, err := repo.Log(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, lines)
}

func TestJournal_GetMissing(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	repo := postgres.NewJournalRepository(pc.Pool.DB())

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrEncounterNotFound)
}

func TestJournal_RecentNewestFirst(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	repo := postgres.NewJournalRepository(pc.Pool.DB())
	ctx := context.Background()

	base := time.Now().UTC()
	older := summary("older", base.Add(-time.Hour))
	newer := summary("newer", base)
	newer.Survivors = nil
	require.NoError(t, repo.Record(ctx, older))
	require.NoError(t, repo.Record(ctx, newer))

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "newer", recent[0].Name)
	assert.Empty(t, recent[0].Survivors)
	assert.Equal(t, "older", recent[1].Name)

	require.NoError(t, pc.Pool.Health(ctx, time.Second))
}
