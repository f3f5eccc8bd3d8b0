package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *VisitorStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 24, 15, 0, 0, 0, time.UTC)

	visits := []Visit{
		{HashedIP: "aaaa", UserAgent: "ua1", Path: "/", Timestamp: now.Add(-time.Hour)},
		{HashedIP: "aaaa", UserAgent: "ua1", Path: "/privacy", Timestamp: now.Add(-20 * time.Hour)},
		{HashedIP: "bbbb", UserAgent: "ua2", Path: "/", Timestamp: now.Add(-3 * 24 * time.Hour)},
		{HashedIP: "cccc", UserAgent: "ua3", Path: "/", Timestamp: now.Add(-30 * 24 * time.Hour)},
	}
	for _, v := range visits {
		require.NoError(t, s.Record(ctx, v))
	}

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalVisitors)
	assert.EqualValues(t, 3, stats.UniqueVisitors)
	assert.EqualValues(t, 1, stats.VisitorsToday)
	assert.EqualValues(t, 3, stats.VisitorsThisWeek)
	require.Len(t, stats.TopPaths, 2)
	assert.Equal(t, PathStat{Path: "/", Views: 3}, stats.TopPaths[0])

	require.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, "/", stats.RecentVisitors[0].Path)
	assert.True(t, now.Add(-time.Hour).Equal(stats.RecentVisitors[0].Timestamp))
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Visit{HashedIP: "x", Path: "/", Timestamp: base.Add(time.Duration(i) * time.Minute)}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, base.Add(4*time.Minute).Equal(got[0].Timestamp))
}

func TestCleanup(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, Visit{HashedIP: "old", Path: "/", Timestamp: now.AddDate(-2, 0, 0)}))
	require.NoError(t, s.Record(ctx, Visit{HashedIP: "new", Path: "/", Timestamp: now.AddDate(0, -1, 0)}))

	removed, err := s.Cleanup(ctx, now, 365*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisitors)
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record(context.Background(), Visit{HashedIP: "x", Path: "/", Timestamp: time.Now()}))
	got, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
