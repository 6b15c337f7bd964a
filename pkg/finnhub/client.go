// Package finnhub reads company news from the Finnhub REST API.
package finnhub

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sentiment-cli/internal/fetcher"
	"github.com/sells-group/sentiment-cli/internal/model"
)

// DefaultBaseURL is the public Finnhub API root.
const DefaultBaseURL = "https://finnhub.io/api/v1"

const dateLayout = "2006-01-02"

// Client fetches raw company news for one symbol and inclusive date window.
type Client interface {
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]model.RawArticle, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	getter  fetcher.JSONGetter
}

// NewClient creates a Finnhub client that issues requests through getter.
func NewClient(apiKey string, getter fetcher.JSONGetter, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		getter:  getter,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewsURL builds the company-news URL. The token travels as a header.
func (c *httpClient) NewsURL(symbol string, from, to time.Time) string {
	q := url.Values{}
	q.Set("symbol", strings.ToUpper(strings.TrimSpace(symbol)))
	q.Set("from", from.UTC().Format(dateLayout))
	q.Set("to", to.UTC().Format(dateLayout))
	return c.baseURL + "/company-news?" + q.Encode()
}

func (c *httpClient) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]model.RawArticle, error) {
	if c.apiKey == "" {
		return nil, eris.New("finnhub: missing api key")
	}
	header := http.Header{}
	header.Set("X-Finnhub-Token", c.apiKey)

	var out []model.RawArticle
	if err := c.getter.GetJSON(ctx, c.NewsURL(symbol, from, to), header, &out); err != nil {
		return nil, eris.Wrapf(err, "finnhub: company news %s", symbol)
	}
	return out, nil
}
