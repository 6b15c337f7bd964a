// Package collect implements bounded multi-request retrieval: date-range
// chunking for windowed APIs and cursor pagination for listing APIs.
package collect

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/resilience"
)

// DefaultChunkDays is the window size used when none is configured.
const DefaultChunkDays = 7

// WindowFetchFunc fetches raw articles for subject published within the
// inclusive calendar-day window [from, to].
type WindowFetchFunc func(ctx context.Context, subject string, from, to time.Time) ([]model.RawArticle, error)

// Window is an inclusive calendar-day range.
type Window struct {
	From time.Time
	To   time.Time
}

// ChunkedOptions configures a Chunked collector.
type ChunkedOptions struct {
	// ChunkDays is the number of calendar days covered by each window.
	ChunkDays int
	// Pause is the delay inserted between consecutive windows.
	Pause time.Duration
}

// ChunkStats summarizes one Collect call.
type ChunkStats struct {
	Windows    int
	Failed     int
	Items      int
	Duplicates int
}

// Chunked splits a date range into fixed-size windows and merges the results
// of one fetch per window.
type Chunked struct {
	opts  ChunkedOptions
	sleep func(ctx context.Context, d time.Duration) error
}

// NewChunked creates a Chunked collector.
func NewChunked(opts ChunkedOptions) *Chunked {
	if opts.ChunkDays <= 0 {
		opts.ChunkDays = DefaultChunkDays
	}
	return &Chunked{opts: opts, sleep: resilience.Sleep}
}

// Windows splits [start, end] into consecutive windows of chunkDays days.
// The last window is truncated to end. Reversed bounds are swapped.
func Windows(start, end time.Time, chunkDays int) []Window {
	if chunkDays <= 0 {
		chunkDays = DefaultChunkDays
	}
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		start, end = end, start
	}

	var out []Window
	for cur := start; !cur.After(end); {
		to := cur.AddDate(0, 0, chunkDays-1)
		if to.After(end) {
			to = end
		}
		out = append(out, Window{From: cur, To: to})
		cur = to.AddDate(0, 0, 1)
	}
	return out
}

// Collect fetches every window of [start, end] for subject and returns the
// merged articles newest first. A failing window is logged and contributes
// nothing. Articles repeating an already-seen (url-or-headline, timestamp)
// key are discarded. Equal timestamps keep first-seen order.
func (c *Chunked) Collect(ctx context.Context, subject string, start, end time.Time, fetch WindowFetchFunc) ([]model.RawArticle, ChunkStats) {
	windows := Windows(start, end, c.opts.ChunkDays)
	stats := ChunkStats{Windows: len(windows)}

	seen := make(map[model.ArticleKey]struct{})
	var merged []model.RawArticle

	for i, w := range windows {
		if i > 0 {
			if err := c.sleep(ctx, c.opts.Pause); err != nil {
				zap.L().Warn("chunked collect interrupted",
					zap.String("subject", subject),
					zap.Int("windows_done", i),
					zap.Error(err),
				)
				break
			}
		}

		items, err := fetch(ctx, subject, w.From, w.To)
		if err != nil {
			stats.Failed++
			zap.L().Warn("window fetch failed, treating as empty",
				zap.String("subject", subject),
				zap.String("from", w.From.Format(time.DateOnly)),
				zap.String("to", w.To.Format(time.DateOnly)),
				zap.Error(err),
			)
			continue
		}

		for _, it := range items {
			key := it.DedupKey()
			if _, dup := seen[key]; dup {
				stats.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, it)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Datetime > merged[j].Datetime
	})
	stats.Items = len(merged)

	return merged, stats
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
