package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// fakeStore implements store.Store for testing.
type fakeStore struct {
	runs    []model.Run
	listErr error
	filter  store.RunFilter
}

func (f *fakeStore) ListRuns(_ context.Context, filter store.RunFilter) ([]model.Run, error) {
	f.filter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Run
	for _, r := range f.runs {
		if !filter.CreatedAfter.IsZero() && r.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Unused store methods satisfy the interface.
func (f *fakeStore) CreateRun(context.Context, model.RunKind, []string) (*model.Run, error) {
	return nil, nil
}
func (f *fakeStore) UpdateRunStatus(context.Context, string, model.RunStatus) error { return nil }
func (f *fakeStore) CompleteRun(context.Context, string, string, int) error         { return nil }
func (f *fakeStore) FailRun(context.Context, string, string) error                  { return nil }
func (f *fakeStore) GetRun(context.Context, string) (*model.Run, error)             { return nil, nil }
func (f *fakeStore) IndexRecords(context.Context, string, model.RunKind, []string) (store.IndexResult, error) {
	return store.IndexResult{}, nil
}
func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

func TestCollector_EmptyStore(t *testing.T) {
	c := NewCollector(&fakeStore{}, 0)

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Total)
	assert.Equal(t, 0.0, snap.FailRate)
	assert.Empty(t, snap.ByKind)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollector_RunMetrics(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := &fakeStore{
		runs: []model.Run{
			{ID: "1", Kind: model.RunKindNews, Status: model.RunStatusDone, RowsWritten: 40, CreatedAt: now.Add(-1 * time.Hour)},
			{ID: "2", Kind: model.RunKindNews, Status: model.RunStatusDone, RowsWritten: 0, CreatedAt: now.Add(-2 * time.Hour)},
			{ID: "3", Kind: model.RunKindSocial, Status: model.RunStatusFailed, CreatedAt: now.Add(-3 * time.Hour)},
			{ID: "4", Kind: model.RunKindScore, Status: model.RunStatusFetching, CreatedAt: now.Add(-5 * time.Hour), UpdatedAt: now.Add(-4 * time.Hour)},
			{ID: "5", Kind: model.RunKindScore, Status: model.RunStatusFetching, CreatedAt: now.Add(-10 * time.Minute), UpdatedAt: now.Add(-5 * time.Minute)},
			// Outside lookback window.
			{ID: "6", Kind: model.RunKindNews, Status: model.RunStatusFailed, CreatedAt: now.Add(-48 * time.Hour)},
		},
	}

	c := NewCollector(st, time.Hour)
	c.now = func() time.Time { return now }

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, now.Add(-24*time.Hour), st.filter.CreatedAfter)
	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, 2, snap.Done)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 2, snap.InFlight)
	assert.Equal(t, 1, snap.Stale)
	assert.Equal(t, 1, snap.Empty)
	assert.Equal(t, 40, snap.Rows)
	assert.InDelta(t, 1.0/3.0, snap.FailRate, 0.001)

	require.Contains(t, snap.ByKind, model.RunKindNews)
	assert.Equal(t, KindMetrics{Total: 2, Done: 2, Empty: 1, Rows: 40}, *snap.ByKind[model.RunKindNews])
	assert.Equal(t, 1, snap.ByKind[model.RunKindSocial].Failed)
	assert.Equal(t, 2, snap.ByKind[model.RunKindScore].Total)
}

func TestCollector_StaleDisabled(t *testing.T) {
	now := time.Now().UTC()
	st := &fakeStore{runs: []model.Run{
		{ID: "1", Status: model.RunStatusFetching, CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)},
	}}

	snap, err := NewCollector(st, 0).Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.InFlight)
	assert.Equal(t, 0, snap.Stale)
}

func TestCollector_FailureRateZeroFinished(t *testing.T) {
	now := time.Now().UTC()
	st := &fakeStore{runs: []model.Run{
		{ID: "1", Status: model.RunStatusConfigured, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "2", Status: model.RunStatusWritten, CreatedAt: now.Add(-2 * time.Hour)},
	}}

	snap, err := NewCollector(st, 0).Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.FailRate)
}

func TestCollector_ListError(t *testing.T) {
	st := &fakeStore{listErr: errors.New("db down")}

	_, err := NewCollector(st, 0).Collect(context.Background(), 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring: list runs")
}
