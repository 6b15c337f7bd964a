// Package config loads sentiment-cli settings from config.yaml, .env files
// and SENTIMENT_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SENTIMENT"

// Config holds the full application configuration.
type Config struct {
	DataDir    string           `yaml:"data_dir" mapstructure:"data_dir"`
	Universe   UniverseConfig   `yaml:"universe" mapstructure:"universe"`
	News       NewsConfig       `yaml:"news" mapstructure:"news"`
	Social     SocialConfig     `yaml:"social" mapstructure:"social"`
	Consensus  ConsensusConfig  `yaml:"consensus" mapstructure:"consensus"`
	Ollama     OllamaConfig     `yaml:"ollama" mapstructure:"ollama"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Finnhub    FinnhubConfig    `yaml:"finnhub" mapstructure:"finnhub"`
	Tiingo     TiingoConfig     `yaml:"tiingo" mapstructure:"tiingo"`
	Market     MarketConfig     `yaml:"market" mapstructure:"market"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Sentiment  SentimentConfig  `yaml:"sentiment" mapstructure:"sentiment"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// UniverseConfig lists the base subjects and the default date window.
// File optionally points at a run.yaml whose values fill unset fields.
type UniverseConfig struct {
	Tickers   []string `yaml:"tickers" mapstructure:"tickers"`
	StartDate string   `yaml:"start_date" mapstructure:"start_date"`
	EndDate   string   `yaml:"end_date" mapstructure:"end_date"`
	File      string   `yaml:"file" mapstructure:"file"`
}

// NewsConfig configures the company-news run.
type NewsConfig struct {
	Provider        string   `yaml:"provider" mapstructure:"provider"`
	ChunkDays       int      `yaml:"chunk_days" mapstructure:"chunk_days"`
	DefaultSpanDays int      `yaml:"default_span_days" mapstructure:"default_span_days"`
	LimitPerTicker  int      `yaml:"limit_per_ticker" mapstructure:"limit_per_ticker"`
	ChunkSleepMS    int      `yaml:"chunk_sleep_ms" mapstructure:"chunk_sleep_ms"`
	ExcludeSources  []string `yaml:"exclude_sources" mapstructure:"exclude_sources"`
	OutputDir       string   `yaml:"output_dir" mapstructure:"output_dir"`
}

// SocialConfig configures the subreddit listing run.
type SocialConfig struct {
	Subreddits        []string `yaml:"subreddits" mapstructure:"subreddits"`
	Limit             int      `yaml:"limit" mapstructure:"limit"`
	MaxPages          int      `yaml:"max_pages" mapstructure:"max_pages"`
	SleepMS           int      `yaml:"sleep_ms" mapstructure:"sleep_ms"`
	IncludeOver18     bool     `yaml:"include_over18" mapstructure:"include_over18"`
	MaxPostsPerTicker int      `yaml:"max_posts_per_ticker" mapstructure:"max_posts_per_ticker"`
	KeywordCount      int      `yaml:"keyword_count" mapstructure:"keyword_count"`
	BaseURL           string   `yaml:"base_url" mapstructure:"base_url"`
	UserAgent         string   `yaml:"user_agent" mapstructure:"user_agent"`
	OutputDir         string   `yaml:"output_dir" mapstructure:"output_dir"`
}

// ConsensusConfig configures peer and keyword sampling.
type ConsensusConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	PeerK       int    `yaml:"peer_k" mapstructure:"peer_k"`
	KeywordK    int    `yaml:"keyword_k" mapstructure:"keyword_k"`
	Runs        int    `yaml:"runs" mapstructure:"runs"`
	KeywordRuns int    `yaml:"keyword_runs" mapstructure:"keyword_runs"`
	Retries     int    `yaml:"retries" mapstructure:"retries"`
}

// OllamaConfig points at a local Ollama daemon.
type OllamaConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// FinnhubConfig holds Finnhub API settings.
type FinnhubConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// TiingoConfig holds Tiingo API settings.
type TiingoConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// MarketConfig configures the daily price run.
type MarketConfig struct {
	IndexSymbol string `yaml:"index_symbol" mapstructure:"index_symbol"`
	ChartURL    string `yaml:"chart_url" mapstructure:"chart_url"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
}

// FetchConfig configures the shared HTTP fetcher.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// SentimentConfig selects and configures the scorer.
type SentimentConfig struct {
	Scorer          string `yaml:"scorer" mapstructure:"scorer"`
	ClassifierURL   string `yaml:"classifier_url" mapstructure:"classifier_url"`
	ClassifierToken string `yaml:"classifier_token" mapstructure:"classifier_token"`
	LabelsURL       string `yaml:"labels_url" mapstructure:"labels_url"`
	CacheTTLMins    int    `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	Concurrency     int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MonitoringConfig configures run ledger health checks.
type MonitoringConfig struct {
	LookbackHours        int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	StaleAfterMins       int     `yaml:"stale_after_mins" mapstructure:"stale_after_mins"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional; existing environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("finnhub.key", EnvPrefix+"_FINNHUB_KEY", "FINNHUB_API_KEY")
	_ = v.BindEnv("tiingo.key", EnvPrefix+"_TIINGO_KEY", "TIINGO_API_KEY")
	_ = v.BindEnv("anthropic.key", EnvPrefix+"_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("ollama.url", EnvPrefix+"_OLLAMA_URL", "OLLAMA_URL")
	_ = v.BindEnv("ollama.model", EnvPrefix+"_OLLAMA_MODEL", "OLLAMA_MODEL")

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Universe.File != "" {
		u, err := LoadUniverse(cfg.Universe.File)
		if err != nil {
			return nil, err
		}
		cfg.applyUniverse(u)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("universe.tickers", []string{})
	v.SetDefault("universe.start_date", "")
	v.SetDefault("universe.end_date", "")
	v.SetDefault("universe.file", "")
	v.SetDefault("news.provider", "finnhub")
	v.SetDefault("news.chunk_days", 7)
	v.SetDefault("news.default_span_days", 7)
	v.SetDefault("news.limit_per_ticker", 200)
	v.SetDefault("news.chunk_sleep_ms", 250)
	v.SetDefault("news.exclude_sources", []string{})
	v.SetDefault("news.output_dir", "")
	v.SetDefault("social.subreddits", []string{"stocks", "investing", "wallstreetbets", "options"})
	v.SetDefault("social.limit", 100)
	v.SetDefault("social.max_pages", 5)
	v.SetDefault("social.sleep_ms", 1200)
	v.SetDefault("social.include_over18", false)
	v.SetDefault("social.max_posts_per_ticker", 200)
	v.SetDefault("social.keyword_count", 15)
	v.SetDefault("social.base_url", "https://old.reddit.com")
	v.SetDefault("social.user_agent", "sentiment-cli/1.0 (social_data)")
	v.SetDefault("social.output_dir", "")
	v.SetDefault("consensus.provider", "ollama")
	v.SetDefault("consensus.peer_k", 5)
	v.SetDefault("consensus.keyword_k", 15)
	v.SetDefault("consensus.runs", 30)
	v.SetDefault("consensus.keyword_runs", 1)
	v.SetDefault("consensus.retries", 2)
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.model", "phi4")
	v.SetDefault("ollama.timeout_secs", 60)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.rate_per_sec", 1.0)
	v.SetDefault("tiingo.base_url", "https://api.tiingo.com")
	v.SetDefault("tiingo.rate_per_sec", 1.0)
	v.SetDefault("market.index_symbol", "^VIX")
	v.SetDefault("market.chart_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("market.output_dir", "")
	v.SetDefault("fetch.user_agent", "sentiment-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 2)
	v.SetDefault("sentiment.scorer", "lexicon")
	v.SetDefault("sentiment.classifier_url", "")
	v.SetDefault("sentiment.classifier_token", "")
	v.SetDefault("sentiment.labels_url", "")
	v.SetDefault("sentiment.cache_ttl_mins", 60)
	v.SetDefault("sentiment.concurrency", 1)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("monitoring.lookback_hours", 24)
	v.SetDefault("monitoring.failure_rate_threshold", 0.2)
	v.SetDefault("monitoring.stale_after_mins", 120)
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Path joins elem under the data directory.
func (c *Config) Path(elem ...string) string {
	return filepath.Join(append([]string{c.DataDir}, elem...)...)
}

// NewsDir returns the directory news JSONL files are written to.
func (c *Config) NewsDir() string {
	if c.News.OutputDir != "" {
		return c.News.OutputDir
	}
	return c.Path("raw", "news")
}

// SocialDir returns the directory social JSONL files are written to.
func (c *Config) SocialDir() string {
	if c.Social.OutputDir != "" {
		return c.Social.OutputDir
	}
	return c.Path("raw", "social")
}

// MarketDir returns the directory market workbooks are written to.
func (c *Config) MarketDir() string {
	if c.Market.OutputDir != "" {
		return c.Market.OutputDir
	}
	return c.Path("processed", "market")
}

// PeersFile is where the peer consensus set is stored.
func (c *Config) PeersFile() string { return c.Path("interim", "peertickers.json") }

// KeywordsFile is where the keyword consensus set is stored.
func (c *Config) KeywordsFile() string { return c.Path("interim", "keywords.json") }

// LedgerPath is the default SQLite ledger location.
func (c *Config) LedgerPath() string { return c.Path("sentiment.db") }

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
