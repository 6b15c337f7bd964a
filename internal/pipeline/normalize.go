package pipeline

import (
	"strings"
	"time"

	"github.com/sells-group/sentiment-cli/internal/identity"
	"github.com/sells-group/sentiment-cli/internal/model"
)

// minRawBuffer is the smallest number of raw items examined per subject.
const minRawBuffer = 300

// NormalizeOptions controls article normalization for one subject.
type NormalizeOptions struct {
	// Limit caps the records kept. Zero keeps everything.
	Limit int
	// ExcludeSources drops articles whose publisher matches, case-insensitive.
	ExcludeSources []string
}

// NormalizeArticles converts raw articles into NewsRecords for ticker. Only
// articles whose UTC publication date falls inside [from, to] are kept.
// Articles without a timestamp are dropped. When a limit is set, at most
// max(3*limit, 300) raw items are examined.
func NormalizeArticles(source, ticker string, raw []model.RawArticle, from, to time.Time, opts NormalizeOptions) []model.NewsRecord {
	if opts.Limit > 0 {
		if buf := max(opts.Limit*3, minRawBuffer); len(raw) > buf {
			raw = raw[:buf]
		}
	}

	excluded := make(map[string]struct{}, len(opts.ExcludeSources))
	for _, s := range opts.ExcludeSources {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			excluded[s] = struct{}{}
		}
	}

	from, to = dateOf(from), dateOf(to)

	var out []model.NewsRecord
	for _, a := range raw {
		if _, skip := excluded[strings.ToLower(strings.TrimSpace(a.Source))]; skip {
			continue
		}
		if a.Datetime <= 0 {
			continue
		}
		published := time.Unix(a.Datetime, 0).UTC()
		day := dateOf(published)
		if day.Before(from) || day.After(to) {
			continue
		}

		out = append(out, model.NewsRecord{
			ID: identity.Assign(source, ticker, identity.Content{
				Link:    a.URL,
				Title:   a.Headline,
				Summary: a.Summary,
			}),
			Ticker:      ticker,
			Date:        day.Format(time.DateOnly),
			PublishedAt: published.Format(time.RFC3339),
			Title:       a.Headline,
			Link:        a.URL,
			Publisher:   a.Source,
			Summary:     a.Summary,
		})
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

// feedTimeLayouts are tried in order for feed dates without a parsed value.
// Layouts without an offset are read as UTC.
var feedTimeLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

// ParsePublished resolves a feed timestamp to a UTC instant.
func ParsePublished(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
