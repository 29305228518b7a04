package tournament

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/config"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/database"
)

func integrationRepo(t *testing.T) *Repository {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.Migrate(context.Background()))

	// each test starts without a stored version
	_, err = repo.pool.Exec(context.Background(), `DELETE FROM snapshot_meta`)
	require.NoError(t, err)
	return repo
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := integrationRepo(t)
	ctx := context.Background()

	s := sampleSnapshot()
	s.Fixtures[0].StartsAt = time.Date(2024, 6, 25, 14, 30, 0, 0, time.UTC)
	require.NoError(t, s.Validate())
	require.NoError(t, repo.SaveSnapshot(ctx, s))

	got, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Teams, len(s.Teams))
	assert.Len(t, got.Fixtures, len(s.Fixtures))
	assert.True(t, s.UpdatedAt.Equal(got.UpdatedAt))

	chances := []Chance{{TeamID: "1", Group: "1", Percentage: 100, Status: "QUALIFIED", ComputedAt: time.Now().UTC()}}
	require.NoError(t, repo.SaveChances(ctx, chances))

	listed, err := repo.ListChances(ctx, "1")
	require.NoError(t, err)
	require.NotEmpty(t, listed)
	assert.Equal(t, chances[0].TeamID, listed[0].TeamID)
}

func TestRepository_RejectsOlderSnapshot(t *testing.T) {
	repo := integrationRepo(t)
	ctx := context.Background()

	newer := sampleSnapshot()
	require.NoError(t, newer.Validate())
	require.NoError(t, repo.SaveSnapshot(ctx, newer))

	older := sampleSnapshot()
	older.UpdatedAt = newer.UpdatedAt.Add(-time.Hour)
	older.Teams = older.Teams[:2]
	older.Fixtures = nil
	require.NoError(t, older.Validate())
	assert.ErrorIs(t, repo.SaveSnapshot(ctx, older), ErrStaleSnapshot)

	got, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, newer.UpdatedAt.Equal(got.UpdatedAt))
	assert.Len(t, got.Teams, len(newer.Teams))
}

func TestRepository_Predictions(t *testing.T) {
	repo := integrationRepo(t)
	ctx := context.Background()

	old := &Prediction{
		ID: uuid.NewString(), Group: "1", Team1: "1", Team2: "2", Winner: "2",
		WinnerBefore: 25, WinnerAfter: 50, CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, repo.SavePrediction(ctx, old))

	removed, err := repo.PrunePredictions(ctx, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))
}
