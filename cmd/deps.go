package main

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/consensus"
	"github.com/sells-group/sentiment-cli/internal/fetcher"
	"github.com/sells-group/sentiment-cli/internal/resilience"
	"github.com/sells-group/sentiment-cli/internal/sentiment"
	"github.com/sells-group/sentiment-cli/internal/store"
	"github.com/sells-group/sentiment-cli/pkg/anthropic"
	"github.com/sells-group/sentiment-cli/pkg/finnhub"
	"github.com/sells-group/sentiment-cli/pkg/ollama"
	"github.com/sells-group/sentiment-cli/pkg/tiingo"
)

// initStore opens and migrates the configured ledger. Driver "none" yields
// a nil store, which the pipelines treat as "do not record".
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "none":
		return nil, nil
	case "sqlite":
		dsn := c.Store.DatabaseURL
		if dsn == "" {
			dsn = c.LedgerPath()
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, eris.Wrap(err, "create ledger dir")
			}
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func closeStore(st store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// newFetcher builds the shared rate-limited fetcher.
func newFetcher(c *config.Config) *fetcher.HTTPFetcher {
	limits := map[string]rate.Limit{}
	if c.Finnhub.RatePerSec > 0 {
		base := c.Finnhub.BaseURL
		if base == "" {
			base = finnhub.DefaultBaseURL
		}
		if h := hostOf(base); h != "" {
			limits[h] = rate.Limit(c.Finnhub.RatePerSec)
		}
	}
	if c.Tiingo.RatePerSec > 0 {
		base := c.Tiingo.BaseURL
		if base == "" {
			base = tiingo.DefaultBaseURL
		}
		if h := hostOf(base); h != "" {
			limits[h] = rate.Limit(c.Tiingo.RatePerSec)
		}
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
		RateLimits: limits,
	})
}

// newGenerator returns the configured consensus model.
func newGenerator(c *config.Config) (consensus.Generator, error) {
	switch c.Consensus.Provider {
	case "ollama":
		return ollama.NewClient(
			ollama.WithBaseURL(c.Ollama.URL),
			ollama.WithModel(c.Ollama.Model),
			ollama.WithTimeout(time.Duration(c.Ollama.TimeoutSecs)*time.Second),
		), nil
	case "anthropic":
		return &consensus.AnthropicGenerator{
			Client:      anthropic.NewClient(c.Anthropic.Key),
			Model:       c.Anthropic.Model,
			Temperature: 1.0,
		}, nil
	default:
		return nil, eris.Errorf("unsupported consensus provider: %s", c.Consensus.Provider)
	}
}

// newScorer returns the configured scorer wrapped in a memoizing cache.
func newScorer(ctx context.Context, c *config.Config, name string) (sentiment.Scorer, error) {
	var inner sentiment.Scorer
	switch name {
	case "lexicon":
		inner = sentiment.NewLexicon()
	case "classifier":
		cl := sentiment.NewClassifier(sentiment.ClassifierOptions{
			Endpoint:  c.Sentiment.ClassifierURL,
			LabelsURL: c.Sentiment.LabelsURL,
			Token:     c.Sentiment.ClassifierToken,
			Timeout:   time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		})
		if err := cl.EnsureInitialized(ctx); err != nil {
			return nil, err
		}
		inner = cl
	default:
		return nil, eris.Errorf("unsupported scorer: %s", name)
	}

	if c.Sentiment.CacheTTLMins <= 0 {
		return inner, nil
	}
	return sentiment.NewCached(inner, time.Duration(c.Sentiment.CacheTTLMins)*time.Minute), nil
}

func newBreaker(name string) *resilience.CircuitBreaker {
	bc := resilience.DefaultCircuitBreakerConfig()
	bc.Name = name
	return resilience.NewCircuitBreaker(bc)
}
