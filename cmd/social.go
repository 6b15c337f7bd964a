package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/collect"
	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/consensus"
	"github.com/sells-group/sentiment-cli/internal/pipeline"
	"github.com/sells-group/sentiment-cli/internal/social"
	"github.com/sells-group/sentiment-cli/pkg/reddit"
)

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Scan subreddit listings and keep posts matching each ticker",
	Long:  "Pages through the newest posts of each configured subreddit, then writes every post matching a ticker's symbol or consensus keywords.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applyTickerFlags(cmd)
		if subs, _ := cmd.Flags().GetStringSlice("subreddits"); len(subs) > 0 {
			cfg.Social.Subreddits = subs
		}
		if n, _ := cmd.Flags().GetInt("max-pages"); n > 0 {
			cfg.Social.MaxPages = n
		}
		if err := validate(cmd, "social"); err != nil {
			return err
		}

		kwFile, _ := cmd.Flags().GetString("keywords-file")
		if kwFile == "" {
			kwFile = cfg.KeywordsFile()
		}
		keywords, err := consensus.ReadSet(kwFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore(st)

		out, _ := cmd.Flags().GetString("out")
		res, err := pipeline.NewSocial(newPagedCollector(cfg), st).Run(ctx, pipeline.SocialOptions{
			Tickers:    cfg.Tickers(),
			Keywords:   keywords,
			Subreddits: cfg.Social.Subreddits,
			Params: collect.PagedParams{
				Limit:         cfg.Social.Limit,
				MaxPages:      cfg.Social.MaxPages,
				Pause:         time.Duration(cfg.Social.SleepMS) * time.Millisecond,
				IncludeOver18: cfg.Social.IncludeOver18,
			},
			Match: social.MatchOptions{
				KeywordCount: cfg.Social.KeywordCount,
				MaxPerTicker: cfg.Social.MaxPostsPerTicker,
			},
			Output:    out,
			OutputDir: cfg.SocialDir(),
		})
		if err != nil {
			return err
		}

		for _, u := range res.Visited {
			zap.L().Debug("social: visited", zap.String("url", u))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Matched %d of %d posts across %d pages for %d tickers; wrote %s\n",
			res.Rows, res.Posts, len(res.Visited), len(res.Tickers), res.Output)
		fmt.Fprintf(cmd.OutOrStdout(), "Post pool written to %s\n", res.PoolOutput)
		if res.Index != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d new ids, %d already known\n", res.Index.New, res.Index.Existing())
		}
		return nil
	},
}

func newPagedCollector(c *config.Config) *collect.Paged {
	var opts []reddit.Option
	if c.Social.BaseURL != "" {
		opts = append(opts, reddit.WithBaseURL(c.Social.BaseURL))
	}
	if c.Social.UserAgent != "" {
		opts = append(opts, reddit.WithUserAgent(c.Social.UserAgent))
	}
	client := reddit.NewClient(newFetcher(c), opts...)
	return collect.NewPaged(social.NewRedditSource(client), social.NormalizeSubmission)
}

func init() {
	socialCmd.Flags().StringSlice("tickers", nil, "comma-separated tickers (overrides universe.tickers)")
	socialCmd.Flags().StringSlice("subreddits", nil, "comma-separated subreddits (overrides social.subreddits)")
	socialCmd.Flags().Int("max-pages", 0, "max listing pages per subreddit (overrides social.max_pages)")
	socialCmd.Flags().String("keywords-file", "", "keyword consensus set used for matching")
	socialCmd.Flags().String("out", "", "output JSONL path")
	rootCmd.AddCommand(socialCmd)
}
