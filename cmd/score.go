package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/sentiment-cli/internal/pipeline"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a news or social JSONL file for sentiment",
	Long:  "Reads NewsRecord or MatchedPost lines, scores each record's combined text and writes one ScoredRecord per line in input order.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if s, _ := cmd.Flags().GetString("scorer"); s != "" {
			cfg.Sentiment.Scorer = s
		}
		if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
			cfg.Sentiment.Concurrency = n
		}
		if err := validate(cmd, "score"); err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = scoredPath(cfg.Path("processed"), input)
		}
		idSource, _ := cmd.Flags().GetString("id-source")

		scorer, err := newScorer(ctx, cfg, cfg.Sentiment.Scorer)
		if err != nil {
			return err
		}
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore(st)

		res, err := pipeline.NewScore(scorer, st).Run(ctx, pipeline.ScoreOptions{
			Input:       input,
			Output:      output,
			IDSource:    idSource,
			Concurrency: cfg.Sentiment.Concurrency,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Scored %d records with %s (%d failed); wrote %s\n",
			res.Rows, cfg.Sentiment.Scorer, res.Failed, res.Output)
		return nil
	},
}

// scoredPath names the default output for input under dir.
func scoredPath(dir, input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+"_scored.jsonl")
}

func init() {
	scoreCmd.Flags().String("input", "", "NewsRecord or MatchedPost JSONL to score")
	scoreCmd.Flags().String("output", "", "output JSONL path (default: <data_dir>/processed/<input>_scored.jsonl)")
	scoreCmd.Flags().String("scorer", "", "lexicon or classifier (overrides sentiment.scorer)")
	scoreCmd.Flags().Int("concurrency", 0, "in-flight scorer calls (overrides sentiment.concurrency)")
	scoreCmd.Flags().String("id-source", "news", "source namespace for news rows missing an id")
	_ = scoreCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scoreCmd)
}
