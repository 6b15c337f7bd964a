package yahoo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sentiment-cli/internal/fetcher"
	"github.com/sells-group/sentiment-cli/internal/model"
)

// DefaultChartURL is the daily chart endpoint.
const DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// VIXSymbol is the CBOE volatility index on Yahoo Finance.
const VIXSymbol = "^VIX"

// ChartClient reads daily OHLCV bars from the chart endpoint.
type ChartClient struct {
	baseURL string
	getter  fetcher.JSONGetter
}

// NewChartClient creates a chart client. An empty baseURL selects
// DefaultChartURL.
func NewChartClient(getter fetcher.JSONGetter, baseURL string) *ChartClient {
	if baseURL == "" {
		baseURL = DefaultChartURL
	}
	return &ChartClient{baseURL: strings.TrimRight(baseURL, "/"), getter: getter}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// ChartURL builds the daily chart URL for the inclusive window.
func (c *ChartClient) ChartURL(symbol string, from, to time.Time) string {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(from.UTC().Unix(), 10))
	// period2 is exclusive.
	q.Set("period2", strconv.FormatInt(to.UTC().AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")
	return c.baseURL + "/" + url.PathEscape(strings.ToUpper(strings.TrimSpace(symbol))) + "?" + q.Encode()
}

// Daily returns bars oldest first. Days with no close are skipped.
func (c *ChartClient) Daily(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var resp chartResponse
	if err := c.getter.GetJSON(ctx, c.ChartURL(symbol, from, to), http.Header{}, &resp); err != nil {
		return nil, eris.Wrapf(err, "yahoo: chart %s", symbol)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, eris.Errorf("yahoo: chart %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, eris.Errorf("yahoo: chart %s: empty result", symbol)
	}

	res := resp.Chart.Result[0]
	q := res.Indicators.Quote[0]
	out := make([]model.PriceBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		closeVal := at(q.Close, i)
		if closeVal == nil {
			continue
		}
		bar := model.PriceBar{
			Symbol: symbol,
			Date:   time.Unix(ts, 0).UTC(),
			Close:  *closeVal,
		}
		if v := at(q.Open, i); v != nil {
			bar.Open = *v
		}
		if v := at(q.High, i); v != nil {
			bar.High = *v
		}
		if v := at(q.Low, i); v != nil {
			bar.Low = *v
		}
		if v := at(q.Volume, i); v != nil {
			bar.Volume = *v
		}
		out = append(out, bar)
	}
	return out, nil
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}
