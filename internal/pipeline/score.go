package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sentiment-cli/internal/identity"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/sentiment"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// ScoreOptions configures one scoring run.
type ScoreOptions struct {
	Input  string
	Output string
	// IDSource namespaces ids re-derived for news rows that lack one.
	IDSource string
	// Concurrency bounds in-flight scorer calls. Default 1.
	Concurrency int
}

// ScoreResult summarizes a scoring run.
type ScoreResult struct {
	RunID  string
	Input  string
	Output string
	Rows   int
	Failed int
}

// Score applies a scorer to every record of a NewsRecord or MatchedPost
// JSONL file and writes one ScoredRecord per input record, in input order.
type Score struct {
	scorer sentiment.Scorer
	store  store.Store
}

// NewScore creates a scoring pipeline. st may be nil.
func NewScore(scorer sentiment.Scorer, st store.Store) *Score {
	return &Score{scorer: scorer, store: st}
}

// scoreRow is the union of the NewsRecord and MatchedPost fields scoring
// reads. Alternate names used by older news files are accepted.
type scoreRow struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	Symbol      string `json:"symbol"`
	Platform    string `json:"platform"`
	MatchedTerm string `json:"matched_term"`
	Date        string `json:"date"`
	DateUTC     string `json:"date_utc"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Text        string `json:"text"`
	Permalink   string `json:"permalink"`
	Link        string `json:"link"`
	URL         string `json:"url"`
}

func (r scoreRow) social() bool {
	return r.Platform != "" || r.MatchedTerm != ""
}

func (r scoreRow) subject() string {
	s := r.Ticker
	if s == "" {
		s = r.Symbol
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

func (r scoreRow) summary() string {
	if s := strings.TrimSpace(r.Summary); s != "" {
		return s
	}
	return strings.TrimSpace(r.Description)
}

func (r scoreRow) permalink() string {
	for _, v := range []string{r.Permalink, r.Link, r.URL} {
		if v != "" {
			return v
		}
	}
	return ""
}

// CombinedText is the text a record is scored on: the post text for social
// rows, otherwise title and summary (and any body) joined by a space.
func (r scoreRow) CombinedText() string {
	if r.social() {
		return r.Text
	}
	var parts []string
	for _, p := range []string{strings.TrimSpace(r.Title), r.summary(), strings.TrimSpace(r.Text)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (r scoreRow) recordID(source string) string {
	if r.ID != "" {
		return r.ID
	}
	return identity.Assign(source, r.subject(), identity.Content{
		Permalink: r.permalink(),
		Title:     r.Title,
		Summary:   r.summary(),
	})
}

func (r scoreRow) date() string {
	if r.Date != "" {
		return r.Date
	}
	return r.DateUTC
}

// Run reads the whole input, scores it with bounded concurrency and writes
// the results in input order. Rows the scorer fails on are logged and left
// out of the output.
func (s *Score) Run(ctx context.Context, opts ScoreOptions) (*ScoreResult, error) {
	lg := startRun(ctx, s.store, model.RunKindScore, nil)

	if opts.IDSource == "" {
		opts.IDSource = "news"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	var rows []scoreRow
	if err := readJSONL(opts.Input, func(r scoreRow) error {
		rows = append(rows, r)
		return nil
	}); err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	lg.set(ctx, model.RunStatusSubjectsResolved)

	lg.set(ctx, model.RunStatusFetching)
	scores := make([]*model.Scores, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, r := range rows {
		g.Go(func() error {
			sc, err := s.scorer.Score(gctx, r.CombinedText())
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				lg.log.Warn("score: record failed", zap.String("id", r.recordID(opts.IDSource)), zap.Error(err))
				return nil
			}
			scores[i] = &sc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		err = eris.Wrap(err, "score: interrupted")
		lg.fail(ctx, err)
		return nil, err
	}

	w, err := createJSONL(opts.Output)
	if err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	res := &ScoreResult{RunID: lg.ID(), Input: opts.Input, Output: opts.Output}
	for i, r := range rows {
		sc := scores[i]
		if sc == nil {
			res.Failed++
			continue
		}
		rec := model.ScoredRecord{
			ID:        r.recordID(opts.IDSource),
			Subject:   r.subject(),
			MatchTerm: r.MatchedTerm,
			Date:      r.date(),
			Neg:       sc.Neg,
			Neu:       sc.Neu,
			Pos:       sc.Pos,
			Compound:  sc.Compound,
			Permalink: r.permalink(),
		}
		if err := w.Write(rec); err != nil {
			w.Close() //nolint:errcheck
			lg.fail(ctx, err)
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	res.Rows = w.Count()
	lg.set(ctx, model.RunStatusWritten)
	lg.complete(ctx, opts.Output, res.Rows)

	lg.log.Info("score: run complete",
		zap.String("input", opts.Input),
		zap.String("output", opts.Output),
		zap.Int("rows", res.Rows),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
