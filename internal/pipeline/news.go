package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// NewsOptions configures one news run.
type NewsOptions struct {
	// Peers maps base subjects to consensus-derived peers appended after them.
	Peers model.ConsensusSet
	// Start and End are optional YYYY-MM-DD bounds.
	Start, End string
	SpanDays   int
	Limit      int

	ExcludeSources []string

	// Output is the JSONL path. When empty a name carrying the provider and
	// window is created under OutputDir.
	Output    string
	OutputDir string

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewsResult summarizes a news run.
type NewsResult struct {
	RunID    string
	Output   string
	Subjects []string
	From, To time.Time
	Rows     int
	// PerSubject counts records written per subject.
	PerSubject map[string]int
	// Index is set when a store indexed the written ids.
	Index *store.IndexResult
}

// News fetches company news for a set of subjects into one JSONL file.
type News struct {
	source ArticleSource
	store  store.Store
}

// NewNews creates a news pipeline. st may be nil.
func NewNews(src ArticleSource, st store.Store) *News {
	return &News{source: src, store: st}
}

// Run resolves subjects and the date window, then collects, normalizes and
// writes each subject in turn. A subject that yields nothing does not stop
// the others.
func (n *News) Run(ctx context.Context, base []string, opts NewsOptions) (*NewsResult, error) {
	lg := startRun(ctx, n.store, model.RunKindNews, base)
	log := lg.log.With(zap.String("provider", n.source.Name()))

	subjects := ResolveSubjects(base, opts.Peers)
	if len(subjects) == 0 {
		err := &config.MissingError{
			Mode:    "news",
			Missing: []config.Requirement{{Key: "universe.tickers", Envs: []string{config.EnvPrefix + "_UNIVERSE_TICKERS", "--tickers"}}},
		}
		lg.fail(ctx, err)
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	from, to, err := ResolveWindow(opts.Start, opts.End, opts.SpanDays, now())
	if err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	lg.set(ctx, model.RunStatusSubjectsResolved)

	out := opts.Output
	if out == "" {
		out = filepath.Join(opts.OutputDir, fmt.Sprintf("%s_news_%s_%s.jsonl",
			n.source.Name(), from.Format(time.DateOnly), to.Format(time.DateOnly)))
	}

	log.Info("news: starting run",
		zap.Strings("subjects", subjects),
		zap.String("from", from.Format(time.DateOnly)),
		zap.String("to", to.Format(time.DateOnly)),
		zap.String("output", out),
	)

	w, err := createJSONL(out)
	if err != nil {
		lg.fail(ctx, err)
		return nil, err
	}

	res := &NewsResult{
		RunID:      lg.ID(),
		Output:     out,
		Subjects:   subjects,
		From:       from,
		To:         to,
		PerSubject: make(map[string]int, len(subjects)),
	}

	lg.set(ctx, model.RunStatusFetching)
	var ids []string
	normOpts := NormalizeOptions{Limit: opts.Limit, ExcludeSources: opts.ExcludeSources}
	for _, subject := range subjects {
		if ctx.Err() != nil {
			log.Warn("news: run interrupted", zap.String("ticker", subject), zap.Error(ctx.Err()))
			break
		}

		raw, err := n.source.Collect(ctx, subject, from, to)
		if err != nil {
			log.Warn("news: subject failed, continuing", zap.String("ticker", subject), zap.Error(err))
			continue
		}

		records := NormalizeArticles(n.source.Name(), subject, raw, from, to, normOpts)
		for _, r := range records {
			if err := w.Write(r); err != nil {
				w.Close() //nolint:errcheck
				lg.fail(ctx, err)
				return nil, err
			}
			ids = append(ids, r.ID)
		}
		res.PerSubject[subject] = len(records)
		log.Debug("news: subject written",
			zap.String("ticker", subject),
			zap.Int("raw", len(raw)),
			zap.Int("records", len(records)),
		)
	}

	if err := w.Close(); err != nil {
		lg.fail(ctx, err)
		return nil, eris.Wrap(err, "news: close output")
	}
	res.Rows = w.Count()
	lg.set(ctx, model.RunStatusWritten)

	res.Index = lg.index(ctx, ids)
	lg.complete(ctx, out, res.Rows)

	log.Info("news: run complete",
		zap.String("output", out),
		zap.Int("rows", res.Rows),
		zap.Int("subjects", len(subjects)),
	)
	return res, nil
}
