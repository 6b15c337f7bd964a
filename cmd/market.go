package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/pipeline"
	"github.com/sells-group/sentiment-cli/pkg/tiingo"
	"github.com/sells-group/sentiment-cli/pkg/yahoo"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Fetch daily stock prices and the volatility index",
	Long:  "Fetches adjusted daily prices per ticker from Tiingo and the volatility index from Yahoo Finance, writing each to its own workbook.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applyTickerFlags(cmd)
		if idx, _ := cmd.Flags().GetString("index"); idx != "" {
			cfg.Market.IndexSymbol = strings.ToUpper(strings.TrimSpace(idx))
		}
		if dir, _ := cmd.Flags().GetString("out-dir"); dir != "" {
			cfg.Market.OutputDir = dir
		}
		if err := validate(cmd, "market"); err != nil {
			return err
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

		stocks, index := newBarSources(cfg)
		res, err := pipeline.NewMarket(stocks, index, st).Run(ctx, cfg.Tickers(), pipeline.MarketOptions{
			Start:       start,
			End:         end,
			SpanDays:    cfg.News.DefaultSpanDays,
			IndexSymbol: cfg.Market.IndexSymbol,
			OutputDir:   cfg.MarketDir(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Stock data written to: %s (%d rows, %s..%s)\n",
			res.StockOutput, res.StockRows, res.From.Format(time.DateOnly), res.To.Format(time.DateOnly))
		fmt.Fprintf(out, "Index data written to: %s (%d rows)\n", res.IndexOutput, res.IndexRows)
		if len(res.Failed) > 0 {
			fmt.Fprintf(out, "No prices for: %s\n", strings.Join(res.Failed, ", "))
		}
		return nil
	},
}

// newBarSources returns the stock price source and the index source.
func newBarSources(c *config.Config) (pipeline.BarSource, pipeline.BarSource) {
	f := newFetcher(c)
	var opts []tiingo.Option
	if c.Tiingo.BaseURL != "" {
		opts = append(opts, tiingo.WithBaseURL(c.Tiingo.BaseURL))
	}
	return tiingo.NewClient(c.Tiingo.Key, f, opts...), yahoo.NewChartClient(f, c.Market.ChartURL)
}

func init() {
	marketCmd.Flags().StringSlice("tickers", nil, "comma-separated tickers (overrides universe.tickers)")
	marketCmd.Flags().String("start", "", "window start YYYY-MM-DD (default: end minus news.default_span_days)")
	marketCmd.Flags().String("end", "", "window end YYYY-MM-DD (default: today)")
	marketCmd.Flags().String("index", "", "volatility index symbol (overrides market.index_symbol)")
	marketCmd.Flags().String("out-dir", "", "directory for the workbooks (overrides market.output_dir)")
	rootCmd.AddCommand(marketCmd)
}
