// Package yahoo reads the Yahoo Finance per-ticker headline RSS feed.
package yahoo

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
)

// DefaultBaseURL is the headline feed endpoint.
const DefaultBaseURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// Downloader returns the raw body of a URL.
type Downloader interface {
	Download(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Item is one feed entry reduced to the fields the news pipeline uses.
type Item struct {
	Title       string
	Link        string
	Summary     string
	Publisher   string
	Published   string    // raw feed date
	PublishedAt time.Time // zero when the feed date could not be parsed
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the feed endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// Client fetches and parses headline feeds.
type Client struct {
	baseURL string
	dl      Downloader
	parser  *gofeed.Parser
}

// NewClient creates a headline feed client.
func NewClient(dl Downloader, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		dl:      dl,
		parser:  gofeed.NewParser(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FeedURL builds the headline feed URL for ticker.
func (c *Client) FeedURL(ticker string) string {
	q := url.Values{}
	q.Set("s", strings.ToUpper(strings.TrimSpace(ticker)))
	q.Set("region", "US")
	q.Set("lang", "en-US")
	return c.baseURL + "?" + q.Encode()
}

// Headlines returns the current feed items for ticker.
func (c *Client) Headlines(ctx context.Context, ticker string) ([]Item, error) {
	body, err := c.dl.Download(ctx, c.FeedURL(ticker))
	if err != nil {
		return nil, eris.Wrapf(err, "yahoo: download feed %s", ticker)
	}
	defer body.Close() //nolint:errcheck

	feed, err := c.parser.Parse(body)
	if err != nil {
		return nil, eris.Wrapf(err, "yahoo: parse feed %s", ticker)
	}

	out := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		item := Item{
			Title:     strings.TrimSpace(it.Title),
			Link:      strings.TrimSpace(it.Link),
			Summary:   strings.TrimSpace(it.Description),
			Publisher: strings.TrimSpace(feed.Title),
			Published: it.Published,
		}
		if it.Author != nil && it.Author.Name != "" {
			item.Publisher = it.Author.Name
		}
		if item.Summary == "" {
			item.Summary = strings.TrimSpace(it.Content)
		}
		switch {
		case it.PublishedParsed != nil:
			item.PublishedAt = it.PublishedParsed.UTC()
		case it.UpdatedParsed != nil:
			item.PublishedAt = it.UpdatedParsed.UTC()
		}
		out = append(out, item)
	}
	return out, nil
}
