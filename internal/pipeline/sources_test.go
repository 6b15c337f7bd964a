package pipeline

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/pkg/yahoo"
)

const headlineFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Yahoo! Finance: ACME News</title>
<item>
  <title>Acme opens new plant</title>
  <link>https://finance.example.com/acme-plant</link>
  <description>Capacity doubles.</description>
  <pubDate>Tue, 06 Jan 2026 15:00:00 +0000</pubDate>
</item>
<item>
  <title>Acme old news</title>
  <link>https://finance.example.com/acme-old</link>
  <pubDate>Mon, 01 Dec 2025 15:00:00 +0000</pubDate>
</item>
</channel>
</rss>`

type feedDownloader struct {
	feeds map[string]string
}

func (d *feedDownloader) Download(_ context.Context, rawURL string) (io.ReadCloser, error) {
	for ticker, body := range d.feeds {
		if strings.Contains(rawURL, "s="+ticker) {
			return io.NopCloser(strings.NewReader(body)), nil
		}
	}
	return nil, errors.New("http 404")
}

func TestNews_YahooProvider(t *testing.T) {
	dl := &feedDownloader{feeds: map[string]string{"ACME": headlineFeed}}
	src := NewYahooSource(yahoo.NewClient(dl))
	out := filepath.Join(t.TempDir(), "yahoo.jsonl")

	res, err := NewNews(src, nil).Run(context.Background(), []string{"ACME", "BETA"}, NewsOptions{
		Start:  "2026-01-01",
		End:    "2026-01-10",
		Output: out,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, map[string]int{"ACME": 1}, res.PerSubject)

	rows := readLines[model.NewsRecord](t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme opens new plant", rows[0].Title)
	assert.Equal(t, "2026-01-06", rows[0].Date)
	assert.Equal(t, "2026-01-06T15:00:00Z", rows[0].PublishedAt)
	assert.True(t, strings.HasPrefix(rows[0].ID, "yahoo:"))
	assert.True(t, strings.HasSuffix(rows[0].ID, ":ACME"))
}
