package social

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/identity"
	"github.com/sells-group/sentiment-cli/internal/model"
)

// Matcher finds the first occurrence of any of a ticker's terms in post text.
type Matcher struct {
	Ticker string
	re     *regexp.Regexp
}

// NewMatcher compiles a case-insensitive alternation of the ticker, the
// cashtag and the keywords, each matched literally. Empty terms are skipped.
func NewMatcher(ticker string, keywords []string) *Matcher {
	terms := append([]string{ticker, "$" + ticker}, keywords...)
	escaped := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(t))
	}
	return &Matcher{
		Ticker: ticker,
		re:     regexp.MustCompile(`(?i)(` + strings.Join(escaped, "|") + `)`),
	}
}

// Match returns the matched term as it appears in text.
func (m *Matcher) Match(text string) (string, bool) {
	loc := m.re.FindStringSubmatch(text)
	if loc == nil {
		return "", false
	}
	return loc[1], true
}

// MatchOptions bounds keyword matching.
type MatchOptions struct {
	// KeywordCount caps how many keywords per ticker enter the pattern.
	KeywordCount int
	// MaxPerTicker stops matching for a ticker once it has this many
	// matches. Other tickers still scan the whole pool. Zero means no cap.
	MaxPerTicker int
}

// MatchPosts pairs every post with every ticker whose terms occur in its
// text. Output is grouped by ticker in the given ticker order, posts in pool
// order.
func MatchPosts(pool []model.SocialPost, tickers []string, keywords model.ConsensusSet, opts MatchOptions) []model.MatchedPost {
	var out []model.MatchedPost
	for _, ticker := range tickers {
		kws := keywords[ticker]
		if opts.KeywordCount > 0 && len(kws) > opts.KeywordCount {
			kws = kws[:opts.KeywordCount]
		}
		m := NewMatcher(ticker, kws)

		matched := 0
		for _, p := range pool {
			text := strings.TrimSpace(p.Text)
			if text == "" {
				continue
			}
			term, ok := m.Match(text)
			if !ok {
				continue
			}
			out = append(out, model.MatchedPost{
				ID:          identity.SocialID(Platform, p.ID, ticker),
				SourceID:    p.ID,
				Platform:    Platform,
				Ticker:      ticker,
				MatchedTerm: term,
				Subreddit:   p.Subreddit,
				Author:      p.Author,
				CreatedUTC:  p.CreatedUTC,
				DateUTC:     p.DateUTC,
				Title:       p.Title,
				Selftext:    p.Selftext,
				Text:        text,
				Score:       p.Score,
				NumComments: p.NumComments,
				Permalink:   p.Permalink,
				PostURL:     p.PostURL,
			})
			matched++
			if opts.MaxPerTicker > 0 && matched >= opts.MaxPerTicker {
				break
			}
		}
		zap.L().Debug("ticker matched",
			zap.String("ticker", ticker),
			zap.Int("keywords", len(kws)),
			zap.Int("matches", matched),
		)
	}
	return out
}
