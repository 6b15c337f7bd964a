package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sentiment-cli",
	Short: "Market sentiment ingestion pipeline",
	Long:  "Collects company news and subreddit posts for a ticker universe, derives peer tickers and keywords by repeated model sampling, and scores the records for sentiment.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// validate checks cfg for mode and prints a remediation hint on failure.
func validate(cmd *cobra.Command, mode string) error {
	err := cfg.Validate(mode)
	var missing *config.MissingError
	if errors.As(err, &missing) {
		fmt.Fprint(cmd.ErrOrStderr(), missing.Hint())
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
