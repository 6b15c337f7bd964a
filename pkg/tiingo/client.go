// Package tiingo reads end-of-day stock prices from the Tiingo REST API.
package tiingo

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

// DefaultBaseURL is the public Tiingo API root.
const DefaultBaseURL = "https://api.tiingo.com"

// DefaultColumns are the adjusted price columns requested per row.
var DefaultColumns = []string{"adjOpen", "adjHigh", "adjLow", "adjClose", "adjVolume"}

// Client fetches daily bars for one ticker over an inclusive date window.
type Client interface {
	Daily(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithColumns overrides the requested price columns.
func WithColumns(cols ...string) Option {
	return func(c *httpClient) {
		c.columns = cols
	}
}

type httpClient struct {
	token   string
	baseURL string
	columns []string
	getter  fetcher.JSONGetter
}

// NewClient creates a Tiingo client that issues requests through getter.
func NewClient(token string, getter fetcher.JSONGetter, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: DefaultBaseURL,
		columns: DefaultColumns,
		getter:  getter,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type priceRow struct {
	Date      time.Time `json:"date"`
	AdjOpen   float64   `json:"adjOpen"`
	AdjHigh   float64   `json:"adjHigh"`
	AdjLow    float64   `json:"adjLow"`
	AdjClose  float64   `json:"adjClose"`
	AdjVolume float64   `json:"adjVolume"`
}

// PricesURL builds the daily prices URL. The token travels as a header.
func (c *httpClient) PricesURL(ticker string, from, to time.Time) string {
	q := url.Values{}
	q.Set("startDate", from.UTC().Format(time.DateOnly))
	q.Set("endDate", to.UTC().Format(time.DateOnly))
	q.Set("resampleFreq", "daily")
	if len(c.columns) > 0 {
		q.Set("columns", strings.Join(c.columns, ","))
	}
	return c.baseURL + "/tiingo/daily/" + url.PathEscape(strings.ToLower(ticker)) + "/prices?" + q.Encode()
}

// Daily returns the bars oldest first. Tiingo answers errors with a JSON
// object instead of an array, which fails to decode and is reported as an
// error, as is an empty result.
func (c *httpClient) Daily(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error) {
	if c.token == "" {
		return nil, eris.New("tiingo: missing api token")
	}
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	header := http.Header{}
	header.Set("Authorization", "Token "+c.token)
	header.Set("Content-Type", "application/json")

	var rows []priceRow
	if err := c.getter.GetJSON(ctx, c.PricesURL(symbol, from, to), header, &rows); err != nil {
		return nil, eris.Wrapf(err, "tiingo: daily prices %s", symbol)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("tiingo: no prices for %s between %s and %s",
			symbol, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	out := make([]model.PriceBar, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.PriceBar{
			Symbol: symbol,
			Date:   r.Date.UTC(),
			Open:   r.AdjOpen,
			High:   r.AdjHigh,
			Low:    r.AdjLow,
			Close:  r.AdjClose,
			Volume: r.AdjVolume,
		})
	}
	return out, nil
}
