// Package pipeline orchestrates the ingestion runs: news, social, consensus
// and scoring. Each run writes one output file and, when a store is
// configured, records its state transitions in the run ledger.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// ledger tracks one run in the store. Ledger failures are logged and never
// abort the run. A nil store turns every call into a no-op.
type ledger struct {
	st   store.Store
	kind model.RunKind
	run  *model.Run
	log  *zap.Logger
}

func startRun(ctx context.Context, st store.Store, kind model.RunKind, subjects []string) *ledger {
	l := &ledger{st: st, kind: kind, log: zap.L().With(zap.String("run_kind", string(kind)))}
	if st == nil {
		return l
	}
	run, err := st.CreateRun(ctx, kind, subjects)
	if err != nil {
		l.log.Warn("pipeline: failed to create run", zap.Error(err))
		return l
	}
	l.run = run
	l.log = l.log.With(zap.String("run_id", run.ID))
	return l
}

// ID returns the ledger id, or "" when the run is not recorded.
func (l *ledger) ID() string {
	if l.run == nil {
		return ""
	}
	return l.run.ID
}

func (l *ledger) set(ctx context.Context, status model.RunStatus) {
	l.log.Debug("pipeline: status", zap.String("status", string(status)))
	if l.run == nil {
		return
	}
	if err := l.st.UpdateRunStatus(ctx, l.run.ID, status); err != nil {
		l.log.Warn("pipeline: failed to update status", zap.String("status", string(status)), zap.Error(err))
		return
	}
	l.run.Status = status
}

func (l *ledger) complete(ctx context.Context, output string, rows int) {
	if l.run == nil {
		return
	}
	if err := l.st.CompleteRun(ctx, l.run.ID, output, rows); err != nil {
		l.log.Warn("pipeline: failed to complete run", zap.Error(err))
		return
	}
	l.run.Status = model.RunStatusDone
}

func (l *ledger) fail(ctx context.Context, cause error) {
	if l.run == nil {
		return
	}
	if err := l.st.FailRun(ctx, l.run.ID, cause.Error()); err != nil {
		l.log.Warn("pipeline: failed to record failure", zap.Error(err))
		return
	}
	l.run.Status = model.RunStatusFailed
}

// index upserts written record ids. It returns nil when there is no store or
// indexing failed.
func (l *ledger) index(ctx context.Context, ids []string) *store.IndexResult {
	if l.st == nil {
		return nil
	}
	res, err := l.st.IndexRecords(ctx, l.ID(), l.kind, ids)
	if err != nil {
		l.log.Warn("pipeline: failed to index records", zap.Error(err))
		return nil
	}
	l.log.Info("pipeline: records indexed",
		zap.Int("submitted", res.Submitted),
		zap.Int("new", res.New),
		zap.Int("existing", res.Existing()),
	)
	return &res
}
