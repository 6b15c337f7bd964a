// Package reddit reads public subreddit listings through the JSON endpoints.
package reddit

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sentiment-cli/internal/fetcher"
)

const (
	// DefaultBaseURL serves the unauthenticated listing endpoints.
	DefaultBaseURL = "https://old.reddit.com"
	// DefaultUserAgent identifies the collector to Reddit.
	DefaultUserAgent = "sentiment-cli/1.0 (social_data)"
)

// Listing is the envelope Reddit returns for /r/{sub}/new.json.
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

// ListingData holds one page of children and the continuation token.
type ListingData struct {
	After    string  `json:"after"`
	Children []Thing `json:"children"`
}

// Thing is a single listing child. Data is left untyped so callers can
// normalize partially populated submissions.
type Thing struct {
	Kind string         `json:"kind"`
	Data map[string]any `json:"data"`
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the listing host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client issues listing requests through a fetcher.JSONGetter.
type Client struct {
	baseURL   string
	userAgent string
	getter    fetcher.JSONGetter
}

// NewClient creates a Reddit listing client.
func NewClient(getter fetcher.JSONGetter, opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		getter:    getter,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewURL builds the newest-first listing URL for a subreddit page.
func (c *Client) NewURL(subreddit, after string, limit int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("raw_json", "1")
	if after != "" {
		q.Set("after", after)
	}
	return c.baseURL + "/r/" + url.PathEscape(subreddit) + "/new.json?" + q.Encode()
}

// FetchListing retrieves and decodes one listing page.
func (c *Client) FetchListing(ctx context.Context, pageURL string) (*Listing, error) {
	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	var l Listing
	if err := c.getter.GetJSON(ctx, pageURL, header, &l); err != nil {
		return nil, eris.Wrap(err, "reddit: fetch listing")
	}
	return &l, nil
}
