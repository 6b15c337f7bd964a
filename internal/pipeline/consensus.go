package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/consensus"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// ConsensusOptions configures one consensus run.
type ConsensusOptions struct {
	// Kind is RunKindPeers or RunKindKeywords.
	Kind     model.RunKind
	Subjects []string
	K        int
	Runs     int
	Output   string
}

// ConsensusRunResult summarizes a consensus run.
type ConsensusRunResult struct {
	RunID   string
	Output  string
	Set     model.ConsensusSet
	Results []model.ConsensusResult
}

// Consensus samples a generator repeatedly per subject and persists the
// winning candidates as a ConsensusSet file.
type Consensus struct {
	sampler *consensus.Sampler
	query   consensus.QueryFunc
	store   store.Store
}

// NewConsensus creates a consensus pipeline. st may be nil.
func NewConsensus(sampler *consensus.Sampler, query consensus.QueryFunc, st store.Store) *Consensus {
	return &Consensus{sampler: sampler, query: query, store: st}
}

// Run builds and writes the set. Subjects with no surviving candidates map
// to an empty list.
func (c *Consensus) Run(ctx context.Context, opts ConsensusOptions) (*ConsensusRunResult, error) {
	lg := startRun(ctx, c.store, opts.Kind, opts.Subjects)

	subjects := ResolveSubjects(opts.Subjects, nil)
	if len(subjects) == 0 {
		err := &config.MissingError{
			Mode:    string(opts.Kind),
			Missing: []config.Requirement{{Key: "universe.tickers", Envs: []string{config.EnvPrefix + "_UNIVERSE_TICKERS", "--tickers"}}},
		}
		lg.fail(ctx, err)
		return nil, err
	}
	lg.set(ctx, model.RunStatusSubjectsResolved)

	lg.set(ctx, model.RunStatusFetching)
	set, results := consensus.BuildSet(ctx, c.sampler, subjects, opts.K, opts.Runs, c.query)

	if err := consensus.WriteSet(opts.Output, set); err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	lg.set(ctx, model.RunStatusWritten)
	lg.complete(ctx, opts.Output, len(set))

	lg.log.Info("consensus: run complete",
		zap.String("output", opts.Output),
		zap.Int("subjects", len(set)),
		zap.Int("k", opts.K),
		zap.Int("runs", opts.Runs),
	)
	return &ConsensusRunResult{
		RunID:   lg.ID(),
		Output:  opts.Output,
		Set:     set,
		Results: results,
	}, nil
}
