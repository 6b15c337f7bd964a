package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Requirement names a missing setting and where it can be supplied.
type Requirement struct {
	Key  string
	Envs []string
}

// MissingError reports configuration that makes a command impossible to run.
type MissingError struct {
	Mode    string
	Missing []Requirement
	Invalid []string
}

func (e *MissingError) Error() string {
	parts := make([]string, 0, len(e.Missing)+len(e.Invalid))
	for _, r := range e.Missing {
		parts = append(parts, r.Key+" is required")
	}
	parts = append(parts, e.Invalid...)
	return fmt.Sprintf("config: %s: %s", e.Mode, strings.Join(parts, "; "))
}

// Hint renders a remediation message listing each missing key and the
// variables or YAML keys that set it.
func (e *MissingError) Hint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot run %q with the current configuration.\n", e.Mode)
	for _, r := range e.Missing {
		fmt.Fprintf(&b, "  missing %s: set it in config.yaml or via %s\n", r.Key, strings.Join(r.Envs, " / "))
	}
	for _, msg := range e.Invalid {
		fmt.Fprintf(&b, "  invalid: %s\n", msg)
	}
	return b.String()
}

func envFor(key string, extra ...string) Requirement {
	env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return Requirement{Key: key, Envs: append([]string{env}, extra...)}
}

// Validate checks that cfg holds what the given command needs.
func (c *Config) Validate(mode string) error {
	e := &MissingError{Mode: mode}

	needTickers := func() {
		if len(c.Tickers()) == 0 {
			e.Missing = append(e.Missing, envFor("universe.tickers"))
		}
	}
	needGenerator := func() {
		switch c.Consensus.Provider {
		case "ollama":
			if c.Ollama.URL == "" {
				e.Missing = append(e.Missing, envFor("ollama.url", "OLLAMA_URL"))
			}
		case "anthropic":
			if c.Anthropic.Key == "" {
				e.Missing = append(e.Missing, envFor("anthropic.key", "ANTHROPIC_API_KEY"))
			}
		default:
			e.Invalid = append(e.Invalid, fmt.Sprintf("consensus.provider must be ollama or anthropic, got %q", c.Consensus.Provider))
		}
		if c.Consensus.Runs < 1 {
			e.Invalid = append(e.Invalid, "consensus.runs must be >= 1")
		}
		if c.Consensus.PeerK < 1 {
			e.Invalid = append(e.Invalid, "consensus.peer_k must be >= 1")
		}
		if c.Consensus.KeywordK < 1 {
			e.Invalid = append(e.Invalid, "consensus.keyword_k must be >= 1")
		}
		if c.Consensus.KeywordRuns < 1 {
			e.Invalid = append(e.Invalid, "consensus.keyword_runs must be >= 1")
		}
		if c.Consensus.Retries < 0 {
			e.Invalid = append(e.Invalid, "consensus.retries must be >= 0")
		}
	}

	switch mode {
	case "news":
		needTickers()
		switch c.News.Provider {
		case "finnhub":
			if c.Finnhub.Key == "" {
				e.Missing = append(e.Missing, envFor("finnhub.key", "FINNHUB_API_KEY"))
			}
		case "yahoo":
		default:
			e.Invalid = append(e.Invalid, fmt.Sprintf("news.provider must be finnhub or yahoo, got %q", c.News.Provider))
		}
		if c.News.ChunkDays < 1 {
			e.Invalid = append(e.Invalid, "news.chunk_days must be >= 1")
		}
		if c.News.LimitPerTicker < 1 {
			e.Invalid = append(e.Invalid, "news.limit_per_ticker must be >= 1")
		}
	case "social":
		needTickers()
		if len(c.Social.Subreddits) == 0 {
			e.Missing = append(e.Missing, envFor("social.subreddits"))
		}
		if c.Social.Limit < 1 || c.Social.Limit > 100 {
			e.Invalid = append(e.Invalid, "social.limit must be between 1 and 100")
		}
		if c.Social.MaxPages < 1 {
			e.Invalid = append(e.Invalid, "social.max_pages must be >= 1")
		}
	case "market":
		needTickers()
		if c.Tiingo.Key == "" {
			e.Missing = append(e.Missing, envFor("tiingo.key", "TIINGO_API_KEY"))
		}
		if strings.TrimSpace(c.Market.IndexSymbol) == "" {
			e.Missing = append(e.Missing, envFor("market.index_symbol"))
		}
	case "peers", "keywords":
		needTickers()
		needGenerator()
	case "score":
		switch c.Sentiment.Scorer {
		case "lexicon":
		case "classifier":
			if c.Sentiment.ClassifierURL == "" {
				e.Missing = append(e.Missing, envFor("sentiment.classifier_url"))
			}
		default:
			e.Invalid = append(e.Invalid, fmt.Sprintf("sentiment.scorer must be lexicon or classifier, got %q", c.Sentiment.Scorer))
		}
	case "runs":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			e.Missing = append(e.Missing, envFor("store.database_url"))
		}
	default:
		e.Invalid = append(e.Invalid, fmt.Sprintf("store.driver must be sqlite, postgres or none, got %q", c.Store.Driver))
	}

	if len(e.Missing) == 0 && len(e.Invalid) == 0 {
		return nil
	}
	return e
}
