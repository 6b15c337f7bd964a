package tiingo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/fetcher"
)

func date(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestPricesURL(t *testing.T) {
	c := NewClient("k", nil, WithBaseURL("https://tiingo.example/")).(*httpClient)
	got := c.PricesURL("NVDA", date("2026-01-02"), date("2026-01-09"))
	assert.Equal(t, "https://tiingo.example/tiingo/daily/nvda/prices?columns=adjOpen%2CadjHigh%2CadjLow%2CadjClose%2CadjVolume&endDate=2026-01-09&resampleFreq=daily&startDate=2026-01-02", got)
}

func TestDaily(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		wantCount int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `[
				{"date":"2026-01-02T00:00:00.000Z","adjOpen":10.5,"adjHigh":11,"adjLow":10,"adjClose":10.75,"adjVolume":1200},
				{"date":"2026-01-05T00:00:00.000Z","adjOpen":10.8,"adjHigh":12,"adjLow":10.7,"adjClose":11.9,"adjVolume":3400}
			]`,
			wantCount: 2,
		},
		{
			name:    "error object",
			status:  http.StatusOK,
			body:    `{"detail":"Error: Ticker 'ZZZZ' not found"}`,
			wantErr: "tiingo: daily prices ACME",
		},
		{
			name:    "empty array",
			status:  http.StatusOK,
			body:    `[]`,
			wantErr: "no prices for ACME",
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"detail":"Invalid token."}`,
			wantErr: "http 401",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/tiingo/daily/acme/prices", r.URL.Path)
				assert.Equal(t, "2026-01-02", r.URL.Query().Get("startDate"))
				assert.Equal(t, "2026-01-09", r.URL.Query().Get("endDate"))
				assert.Empty(t, r.URL.Query().Get("token"))
				assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			client := NewClient("test-token", fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 0}), WithBaseURL(srv.URL))
			got, err := client.Daily(context.Background(), "acme", date("2026-01-02"), date("2026-01-09"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantCount)
			assert.Equal(t, "ACME", got[0].Symbol)
			assert.Equal(t, date("2026-01-02"), got[0].Date)
			assert.InDelta(t, 10.75, got[0].Close, 1e-9)
			assert.InDelta(t, 3400, got[1].Volume, 1e-9)
		})
	}
}

func TestDaily_MissingToken(t *testing.T) {
	client := NewClient("", fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
	_, err := client.Daily(context.Background(), "ACME", date("2026-01-02"), date("2026-01-09"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing api token")
}
