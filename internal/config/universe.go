package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Universe is the run.yaml file shape: the ticker universe plus a few
// run-wide counts.
type Universe struct {
	Universe struct {
		Tickers   []string `yaml:"tickers"`
		StartDate string   `yaml:"start_date"`
		EndDate   string   `yaml:"end_date"`
	} `yaml:"universe"`
	NewsLimitPerTicker int `yaml:"news_limit_per_ticker"`
	KeywordCount       int `yaml:"keyword_count"`
	PeerCount          int `yaml:"Peer Company Count"`
}

// LoadUniverse reads a run.yaml file.
func LoadUniverse(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read universe %s", path)
	}
	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, eris.Wrapf(err, "config: parse universe %s", path)
	}
	return &u, nil
}

// applyUniverse fills fields that config.yaml and the environment left at
// their defaults.
func (c *Config) applyUniverse(u *Universe) {
	if len(c.Universe.Tickers) == 0 {
		c.Universe.Tickers = u.Universe.Tickers
	}
	if c.Universe.StartDate == "" {
		c.Universe.StartDate = u.Universe.StartDate
	}
	if c.Universe.EndDate == "" {
		c.Universe.EndDate = u.Universe.EndDate
	}
	if u.NewsLimitPerTicker > 0 {
		c.News.LimitPerTicker = u.NewsLimitPerTicker
		c.Social.MaxPostsPerTicker = u.NewsLimitPerTicker
	}
	if u.KeywordCount > 0 {
		c.Consensus.KeywordK = u.KeywordCount
		c.Social.KeywordCount = u.KeywordCount
	}
	if u.PeerCount > 0 {
		c.Consensus.PeerK = u.PeerCount
	}
}

// Tickers returns the configured tickers upper-cased, trimmed and
// deduplicated in first-seen order.
func (c *Config) Tickers() []string {
	return NormalizeTickers(c.Universe.Tickers)
}

// NormalizeTickers upper-cases, trims and deduplicates tickers, keeping
// first-seen order. Entries may hold comma-separated lists.
func NormalizeTickers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		for _, t := range strings.Split(item, ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
