package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/sentiment-cli/internal/consensus"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/pipeline"
)

// consensusMode describes one consensus command.
type consensusMode struct {
	kind      model.RunKind
	extractor consensus.Extractor
	k         func() int
	runs      func() int
	output    func() string
}

var peersMode = consensusMode{
	kind:      model.RunKindPeers,
	extractor: consensus.Peers,
	k:         func() int { return cfg.Consensus.PeerK },
	runs:      func() int { return cfg.Consensus.Runs },
	output:    func() string { return cfg.PeersFile() },
}

var keywordsMode = consensusMode{
	kind:      model.RunKindKeywords,
	extractor: consensus.Keywords,
	k:         func() int { return cfg.Consensus.KeywordK },
	runs:      func() int { return cfg.Consensus.KeywordRuns },
	output:    func() string { return cfg.KeywordsFile() },
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Derive peer tickers for the universe by repeated model sampling",
	RunE:  runConsensus(peersMode),
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Derive matching keywords for the universe by repeated model sampling",
	RunE:  runConsensus(keywordsMode),
}

func runConsensus(m consensusMode) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applyTickerFlags(cmd)
		if p, _ := cmd.Flags().GetString("provider"); p != "" {
			cfg.Consensus.Provider = p
		}
		if err := validate(cmd, string(m.kind)); err != nil {
			return err
		}

		k, _ := cmd.Flags().GetInt("k")
		if k <= 0 {
			k = m.k()
		}
		runs, _ := cmd.Flags().GetInt("runs")
		if runs <= 0 {
			runs = m.runs()
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = m.output()
		}

		gen, err := newGenerator(cfg)
		if err != nil {
			return err
		}
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore(st)

		query := consensus.NewQuery(gen, m.extractor, consensus.QueryOptions{
			Retries: cfg.Consensus.Retries,
			Breaker: newBreaker(cfg.Consensus.Provider + "-" + m.extractor.Name),
		})
		res, err := pipeline.NewConsensus(consensus.NewSampler(m.extractor.Normalize), query, st).Run(ctx, pipeline.ConsensusOptions{
			Kind:     m.kind,
			Subjects: cfg.Tickers(),
			K:        k,
			Runs:     runs,
			Output:   out,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, subject := range cfg.Tickers() {
			fmt.Fprintf(w, "%-8s %s\n", subject, strings.Join(res.Set[subject], ", "))
		}
		fmt.Fprintf(w, "Wrote %d %s sets to %s\n", len(res.Set), m.kind, res.Output)
		return nil
	}
}

func init() {
	for _, c := range []*cobra.Command{peersCmd, keywordsCmd} {
		c.Flags().StringSlice("tickers", nil, "comma-separated tickers (overrides universe.tickers)")
		c.Flags().String("provider", "", "generator: ollama or anthropic (overrides consensus.provider)")
		c.Flags().Int("k", 0, "candidates kept per ticker")
		c.Flags().Int("runs", 0, "samples per ticker")
		c.Flags().String("out", "", "output JSON path")
		rootCmd.AddCommand(c)
	}
}
