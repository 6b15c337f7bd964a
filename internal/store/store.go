// Package store persists the run ledger and the record-id index.
package store

import (
	"context"
	"time"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	Kind         model.RunKind   `json:"kind,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// IndexResult reports how many record ids were new to the index.
type IndexResult struct {
	Submitted int `json:"submitted"`
	New       int `json:"new"`
}

// Existing is the number of submitted ids that were already indexed.
func (r IndexResult) Existing() int {
	return r.Submitted - r.New
}

// Store defines the persistence interface for ingestion runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, kind model.RunKind, subjects []string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID, output string, rows int) error
	FailRun(ctx context.Context, runID, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Record index
	IndexRecords(ctx context.Context, runID string, kind model.RunKind, ids []string) (IndexResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

// uniqueIDs drops blanks and repeats, preserving first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
