package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/sentiment-cli/internal/collect"
	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/consensus"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/pipeline"
	"github.com/sells-group/sentiment-cli/pkg/finnhub"
	"github.com/sells-group/sentiment-cli/pkg/yahoo"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Fetch company news for the ticker universe and its peers",
	Long:  "Fetches company news per ticker over a date window in fixed-size chunks, normalizes it and writes one NewsRecord per line.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applyTickerFlags(cmd)
		if p, _ := cmd.Flags().GetString("provider"); p != "" {
			cfg.News.Provider = p
		}
		if n, _ := cmd.Flags().GetInt("limit"); n > 0 {
			cfg.News.LimitPerTicker = n
		}
		if err := validate(cmd, "news"); err != nil {
			return err
		}

		peersFile, _ := cmd.Flags().GetString("peers-file")
		if peersFile == "" {
			peersFile = cfg.PeersFile()
		}
		var peers model.ConsensusSet
		if noPeers, _ := cmd.Flags().GetBool("no-peers"); !noPeers {
			set, err := consensus.ReadSet(peersFile)
			if err != nil {
				return err
			}
			peers = set
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore(st)

		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		if start == "" {
			start = cfg.Universe.StartDate
		}
		if end == "" {
			end = cfg.Universe.EndDate
		}
		out, _ := cmd.Flags().GetString("out")

		res, err := pipeline.NewNews(newArticleSource(cfg), st).Run(ctx, cfg.Tickers(), pipeline.NewsOptions{
			Peers:          peers,
			Start:          start,
			End:            end,
			SpanDays:       cfg.News.DefaultSpanDays,
			Limit:          cfg.News.LimitPerTicker,
			ExcludeSources: cfg.News.ExcludeSources,
			Output:         out,
			OutputDir:      cfg.NewsDir(),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records for %d tickers (%s..%s) to %s\n",
			res.Rows, len(res.Subjects), res.From.Format(time.DateOnly), res.To.Format(time.DateOnly), res.Output)
		if res.Index != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d new ids, %d already known\n", res.Index.New, res.Index.Existing())
		}
		return nil
	},
}

func newArticleSource(c *config.Config) pipeline.ArticleSource {
	f := newFetcher(c)
	if c.News.Provider == "yahoo" {
		return pipeline.NewYahooSource(yahoo.NewClient(f))
	}

	var opts []finnhub.Option
	if c.Finnhub.BaseURL != "" {
		opts = append(opts, finnhub.WithBaseURL(c.Finnhub.BaseURL))
	}
	chunked := collect.NewChunked(collect.ChunkedOptions{
		ChunkDays: c.News.ChunkDays,
		Pause:     time.Duration(c.News.ChunkSleepMS) * time.Millisecond,
	})
	return pipeline.NewFinnhubSource(finnhub.NewClient(c.Finnhub.Key, f, opts...), chunked)
}

// applyTickerFlags lets --tickers replace the configured universe.
func applyTickerFlags(cmd *cobra.Command) {
	if tickers, _ := cmd.Flags().GetStringSlice("tickers"); len(tickers) > 0 {
		cfg.Universe.Tickers = config.NormalizeTickers(tickers)
	}
}

func init() {
	newsCmd.Flags().StringSlice("tickers", nil, "comma-separated tickers (overrides universe.tickers)")
	newsCmd.Flags().String("start", "", "window start YYYY-MM-DD (default: end minus news.default_span_days)")
	newsCmd.Flags().String("end", "", "window end YYYY-MM-DD (default: today)")
	newsCmd.Flags().String("peers-file", "", "peer consensus set to expand tickers with")
	newsCmd.Flags().Bool("no-peers", false, "do not expand tickers with peers")
	newsCmd.Flags().String("provider", "", "news provider: finnhub or yahoo (overrides news.provider)")
	newsCmd.Flags().Int("limit", 0, "max records per ticker (overrides news.limit_per_ticker)")
	newsCmd.Flags().String("out", "", "output JSONL path")
	rootCmd.AddCommand(newsCmd)
}
