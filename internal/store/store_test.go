package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/forPelevin/subextract/internal/types"
)

// testDSN prefers SUBEXTRACT_TEST_DATABASE_URL and otherwise starts a
// throwaway Postgres container. Without Docker the test is skipped.
func testDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("SUBEXTRACT_TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	if testing.Short() {
		t.Skip("postgres store test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("subextract_test"),
		postgres.WithUsername("subextract"),
		postgres.WithPassword("subextract"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := testDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Millisecond)
	r := types.Report{
		Snapshot: types.Snapshot{
			JobID:           uuid.New().String(),
			Status:          types.StatusCancelled,
			FramesProcessed: 12,
			TotalFrames:     500,
			OutputPaths:     []string{"/tmp/a.srt", "/tmp/a.txt"},
			StartedAt:       started,
			FinishedAt:      started.Add(30 * time.Second),
		},
		Video:            "/tmp/a.mp4",
		SampleIntervalMs: 800,
		MinDurationMs:    1200,
		Model:            "qwen/qwen3-vl-8b",
		Entries: []types.SubtitleEntry{
			{StartMs: 0, EndMs: 1200, Text: "one"},
			{StartMs: 1600, EndMs: 2800, Text: "two"},
		},
	}
	require.NoError(t, s.RecordJob(ctx, r))

	r.Status = types.StatusErrored
	r.Err = errors.New("read frame after 40: corrupt")
	r.Entries = r.Entries[:1]
	require.NoError(t, s.RecordJob(ctx, r))

	jobs, err := s.ListJobs(ctx, 100)
	require.NoError(t, err)
	var got *JobRow
	for i := range jobs {
		if jobs[i].ID == r.JobID {
			got = &jobs[i]
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, types.StatusErrored, got.Status)
	assert.Equal(t, 1, got.EntryCount)
	assert.Equal(t, "read frame after 40: corrupt", got.Error)

	entries, err := s.Entries(ctx, r.JobID)
	require.NoError(t, err)
	assert.Equal(t, r.Entries, entries)
}
