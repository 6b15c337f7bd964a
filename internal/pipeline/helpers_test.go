package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func readLines[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	var out []T
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var v T
		require.NoError(t, json.Unmarshal(sc.Bytes(), &v), "line %q", sc.Text())
		out = append(out, v)
	}
	require.NoError(t, sc.Err())
	return out
}

func writeLines(t *testing.T, path string, rows ...any) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	enc := json.NewEncoder(f)
	for _, r := range rows {
		require.NoError(t, enc.Encode(r))
	}
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, kind model.RunKind, subjects []string) (*model.Run, error) {
	args := m.Called(ctx, kind, subjects)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	return m.Called(ctx, runID, status).Error(0)
}

func (m *mockStore) CompleteRun(ctx context.Context, runID, output string, rows int) error {
	return m.Called(ctx, runID, output, rows).Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, runID, reason string) error {
	return m.Called(ctx, runID, reason).Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) IndexRecords(ctx context.Context, runID string, kind model.RunKind, ids []string) (store.IndexResult, error) {
	args := m.Called(ctx, runID, kind, ids)
	return args.Get(0).(store.IndexResult), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
