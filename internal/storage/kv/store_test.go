package kv

import (
	"context"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(name string, started time.Time) *report.Report {
	return &report.Report{
		Meta:    report.Meta{RunID: uuid.New(), Name: name, StartedAt: started, RowCount: 2},
		Columns: []string{"data", "score"},
		Rows:    [][]any{{"a", 1}, {"b", nil}},
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := newReport("older", base)
	newer := newReport("newer", base.Add(time.Minute))
	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	got, err := s.Get(ctx, older.Meta.RunID)
	require.NoError(t, err)
	assert.Equal(t, older.Meta.RunID, got.Meta.RunID)
	assert.True(t, older.Meta.StartedAt.Equal(got.Meta.StartedAt))
	assert.Equal(t, older.Columns, got.Columns)
	// numbers come back as float64
	assert.Equal(t, [][]any{{"a", 1.0}, {"b", nil}}, got.Rows)

	metas, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "newer", metas[0].Name)
	assert.Equal(t, "older", metas[1].Name)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrRunNotFound)

	assert.Error(t, s.Save(ctx, &report.Report{}))
	assert.True(t, s.Healthy(ctx))
}

func TestStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	r := newReport("kept", time.Now().UTC())
	require.NoError(t, s.Save(ctx, r))
	s.Close()
	assert.False(t, s.Healthy(ctx))

	reopened, err := Open(Config{Path: dir})
	require.NoError(t, err)
	t.Cleanup(reopened.Close)

	metas, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, r.Meta.RunID, metas[0].RunID)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.ErrorContains(t, err, "path is required")
}
