package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/collect"
	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/social"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// Output names used when none is given.
const (
	DefaultSocialFile = "reddit_matched.jsonl"
	DefaultPoolFile   = "reddit_posts.jsonl"
)

// SocialOptions configures one social run.
type SocialOptions struct {
	Tickers    []string
	Keywords   model.ConsensusSet
	Subreddits []string
	Params     collect.PagedParams
	Match      social.MatchOptions

	Output    string
	OutputDir string
	// PoolOutput receives every deduplicated post before matching. Empty
	// selects DefaultPoolFile next to Output.
	PoolOutput string
}

// SocialResult summarizes a social run.
type SocialResult struct {
	RunID      string
	Output     string
	PoolOutput string
	Tickers    []string
	Posts   int
	Rows    int
	// Visited lists every listing page requested, in order.
	Visited []string
	Index   *store.IndexResult
}

// Social scans listing sources into a post pool and writes the posts that
// match each ticker's keyword set.
type Social struct {
	collector *collect.Paged
	store     store.Store
}

// NewSocial creates a social pipeline. st may be nil.
func NewSocial(collector *collect.Paged, st store.Store) *Social {
	return &Social{collector: collector, store: st}
}

// Run collects the pool once and matches it against every ticker.
func (s *Social) Run(ctx context.Context, opts SocialOptions) (*SocialResult, error) {
	lg := startRun(ctx, s.store, model.RunKindSocial, opts.Tickers)

	tickers := ResolveSubjects(opts.Tickers, nil)
	var missing []config.Requirement
	if len(tickers) == 0 {
		missing = append(missing, config.Requirement{Key: "universe.tickers", Envs: []string{config.EnvPrefix + "_UNIVERSE_TICKERS", "--tickers"}})
	}
	if len(opts.Subreddits) == 0 {
		missing = append(missing, config.Requirement{Key: "social.subreddits", Envs: []string{config.EnvPrefix + "_SOCIAL_SUBREDDITS"}})
	}
	if len(missing) > 0 {
		err := &config.MissingError{Mode: "social", Missing: missing}
		lg.fail(ctx, err)
		return nil, err
	}
	lg.set(ctx, model.RunStatusSubjectsResolved)

	out := opts.Output
	if out == "" {
		out = filepath.Join(opts.OutputDir, DefaultSocialFile)
	}
	poolOut := opts.PoolOutput
	if poolOut == "" {
		poolOut = filepath.Join(filepath.Dir(out), DefaultPoolFile)
	}

	lg.set(ctx, model.RunStatusFetching)
	pool, visited := s.collector.CollectAll(ctx, opts.Subreddits, opts.Params)
	if err := writePool(poolOut, pool); err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	matched := social.MatchPosts(pool, tickers, opts.Keywords, opts.Match)

	w, err := createJSONL(out)
	if err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	ids := make([]string, 0, len(matched))
	for _, m := range matched {
		if err := w.Write(m); err != nil {
			w.Close() //nolint:errcheck
			lg.fail(ctx, err)
			return nil, err
		}
		ids = append(ids, m.ID)
	}
	if err := w.Close(); err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	lg.set(ctx, model.RunStatusWritten)

	res := &SocialResult{
		RunID:      lg.ID(),
		Output:     out,
		PoolOutput: poolOut,
		Tickers:    tickers,
		Posts:      len(pool),
		Rows:       w.Count(),
		Visited:    visited,
	}
	res.Index = lg.index(ctx, ids)
	lg.complete(ctx, out, res.Rows)

	lg.log.Info("social: run complete",
		zap.String("output", out),
		zap.Int("pool", res.Posts),
		zap.Int("matched", res.Rows),
		zap.Int("pages", len(visited)),
	)
	return res, nil
}

// writePool persists each collected post once, in collection order.
func writePool(path string, pool []model.SocialPost) error {
	w, err := createJSONL(path)
	if err != nil {
		return err
	}
	for _, p := range pool {
		if err := w.Write(p); err != nil {
			w.Close() //nolint:errcheck
			return err
		}
	}
	return w.Close()
}
