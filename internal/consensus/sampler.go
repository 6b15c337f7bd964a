// Package consensus reduces repeated samples from a stochastic text
// generator to a stable ranked list of candidates by frequency voting.
package consensus

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// QueryFunc asks the generator once for up to k candidates related to
// subject. It returns an empty slice when the attempt produced nothing usable.
type QueryFunc func(ctx context.Context, subject string, k int) []string

// Sampler runs a QueryFunc repeatedly and votes on the results.
type Sampler struct {
	normalize func(string) string
}

// NewSampler creates a Sampler that folds candidates through normalize
// before voting. A nil normalize leaves candidates untouched.
func NewSampler(normalize func(string) string) *Sampler {
	if normalize == nil {
		normalize = func(s string) string { return s }
	}
	return &Sampler{normalize: normalize}
}

// Sample issues runs independent queries and returns the k candidates with
// the most votes. Each run votes at most once per distinct candidate. Ties
// keep first-seen order. No usable answers yield an empty result.
func (s *Sampler) Sample(ctx context.Context, subject string, k, runs int, query QueryFunc) []model.Candidate {
	tally := NewTally()
	empty := 0

	for i := 0; i < runs; i++ {
		if ctx.Err() != nil {
			zap.L().Warn("consensus sampling interrupted",
				zap.String("subject", subject),
				zap.Int("runs_done", i),
			)
			break
		}

		got := query(ctx, subject, k)
		run := make([]string, 0, len(got))
		seen := make(map[string]struct{}, len(got))
		for _, c := range got {
			c = s.normalize(c)
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			run = append(run, c)
		}
		if len(run) == 0 {
			empty++
		}
		tally.Add(run...)
	}

	top := tally.Top(k)
	zap.L().Info("consensus sampled",
		zap.String("subject", subject),
		zap.Int("runs", runs),
		zap.Int("empty_runs", empty),
		zap.Int("distinct", tally.Len()),
		zap.Int("selected", len(top)),
	)
	return top
}
