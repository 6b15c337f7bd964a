package model

import "time"

// RunStatus represents the current state of an ingestion run.
type RunStatus string

const (
	RunStatusConfigured       RunStatus = "configured"
	RunStatusSubjectsResolved RunStatus = "subjects_resolved"
	RunStatusFetching         RunStatus = "fetching"
	RunStatusWritten          RunStatus = "written"
	RunStatusDone             RunStatus = "done"
	RunStatusFailed           RunStatus = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s RunStatus) Terminal() bool {
	return s == RunStatusDone || s == RunStatusFailed
}

// RunKind names the pipeline a run belongs to.
type RunKind string

const (
	RunKindNews     RunKind = "news"
	RunKindSocial   RunKind = "social"
	RunKindPeers    RunKind = "peers"
	RunKindKeywords RunKind = "keywords"
	RunKindScore    RunKind = "score"
	RunKindMarket   RunKind = "market"
)

// Run is a single pipeline execution recorded in the run ledger.
type Run struct {
	ID          string    `json:"id"`
	Kind        RunKind   `json:"kind"`
	Status      RunStatus `json:"status"`
	Subjects    []string  `json:"subjects,omitempty"`
	Output      string    `json:"output,omitempty"`
	RowsWritten int       `json:"rows_written"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
