package pipeline

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/collect"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/pkg/finnhub"
	"github.com/sells-group/sentiment-cli/pkg/yahoo"
)

// ArticleSource returns raw articles for one subject over an inclusive date
// window, newest first. Transport failures degrade to fewer articles; an
// error means nothing at all could be collected.
type ArticleSource interface {
	Name() string
	Collect(ctx context.Context, subject string, from, to time.Time) ([]model.RawArticle, error)
}

// FinnhubSource collects company news window by window.
type FinnhubSource struct {
	client  finnhub.Client
	chunked *collect.Chunked
}

// NewFinnhubSource creates a chunked Finnhub article source.
func NewFinnhubSource(client finnhub.Client, chunked *collect.Chunked) *FinnhubSource {
	return &FinnhubSource{client: client, chunked: chunked}
}

// Name implements ArticleSource.
func (s *FinnhubSource) Name() string { return "finnhub" }

// Collect implements ArticleSource.
func (s *FinnhubSource) Collect(ctx context.Context, subject string, from, to time.Time) ([]model.RawArticle, error) {
	items, stats := s.chunked.Collect(ctx, subject, from, to, s.client.CompanyNews)
	zap.L().Info("finnhub: subject collected",
		zap.String("ticker", subject),
		zap.Int("windows", stats.Windows),
		zap.Int("failed_windows", stats.Failed),
		zap.Int("items", stats.Items),
		zap.Int("duplicates", stats.Duplicates),
	)
	return items, nil
}

// YahooSource reads the per-ticker headline feed. The feed only carries
// recent items, so one request covers the window and the window filter is
// applied during normalization.
type YahooSource struct {
	client *yahoo.Client
}

// NewYahooSource creates a Yahoo headline article source.
func NewYahooSource(client *yahoo.Client) *YahooSource {
	return &YahooSource{client: client}
}

// Name implements ArticleSource.
func (s *YahooSource) Name() string { return "yahoo" }

// Collect implements ArticleSource.
func (s *YahooSource) Collect(ctx context.Context, subject string, _, _ time.Time) ([]model.RawArticle, error) {
	items, err := s.client.Headlines(ctx, subject)
	if err != nil {
		return nil, err
	}
	out := ArticlesFromFeed(items)
	zap.L().Info("yahoo: subject collected",
		zap.String("ticker", subject),
		zap.Int("items", len(items)),
		zap.Int("dated", len(out)),
	)
	return out, nil
}

// ArticlesFromFeed converts feed items into raw articles, newest first.
// Items without a resolvable timestamp are dropped.
func ArticlesFromFeed(items []yahoo.Item) []model.RawArticle {
	out := make([]model.RawArticle, 0, len(items))
	for _, it := range items {
		published := it.PublishedAt
		if published.IsZero() {
			t, ok := ParsePublished(it.Published)
			if !ok {
				continue
			}
			published = t
		}
		out = append(out, model.RawArticle{
			Datetime: published.Unix(),
			Headline: it.Title,
			Source:   it.Publisher,
			Summary:  it.Summary,
			URL:      it.Link,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Datetime > out[j].Datetime
	})
	return out
}
