package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(id string, started time.Time) Run {
	return Run{
		ID:        id,
		Started:   started,
		Duration:  1200 * time.Millisecond,
		Documents: 4,
		Pages:     12,
		Outcome:   OutcomeSuccess,
	}
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, testRun("run-1", base)))
	require.NoError(t, store.Record(ctx, testRun("run-2", base.Add(time.Hour))))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-2", runs[0].ID)
	require.Equal(t, "run-1", runs[1].ID)
	require.Equal(t, 12, runs[0].Pages)
	require.Equal(t, 1200*time.Millisecond, runs[0].Duration)
	require.True(t, runs[0].Started.Equal(base.Add(time.Hour)))
}

func TestStore_RecentHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		run := testRun("run-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Record(ctx, run))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-e", runs[0].ID)
}

func TestStore_RecordsFailureDetails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := testRun("run-bad", time.Now())
	run.Outcome = OutcomeFailed
	run.Error = "load stage: content dir missing"
	require.NoError(t, store.Record(ctx, run))

	runs, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, runs[0].Outcome)
	require.Equal(t, "load stage: content dir missing", runs[0].Error)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, testRun("run-1", time.Now())))
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
