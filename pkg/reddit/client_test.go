package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/fetcher"
)

func TestNewURL(t *testing.T) {
	c := NewClient(nil, WithBaseURL("https://example.test/"))

	assert.Equal(t, "https://example.test/r/stocks/new.json?limit=100&raw_json=1",
		c.NewURL("stocks", "", 100))
	assert.Equal(t, "https://example.test/r/stocks/new.json?after=t3_abc&limit=25&raw_json=1",
		c.NewURL("stocks", "t3_abc", 25))
}

func TestFetchListing(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   bool
		wantAfter string
		wantLen   int
	}{
		{
			name:      "page with continuation",
			status:    http.StatusOK,
			body:      `{"kind":"Listing","data":{"after":"t3_b","children":[{"kind":"t3","data":{"id":"a","title":"x"}},{"kind":"t3","data":{"id":"b"}}]}}`,
			wantAfter: "t3_b",
			wantLen:   2,
		},
		{
			name:   "last page has null after",
			status: http.StatusOK,
			body:   `{"kind":"Listing","data":{"after":null,"children":[]}}`,
		},
		{
			name:    "rate limited",
			status:  http.StatusForbidden,
			body:    `blocked`,
			wantErr: true,
		},
		{
			name:    "html body",
			status:  http.StatusOK,
			body:    `<html>nope</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/r/stocks/new.json", r.URL.Path)
				assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			c := NewClient(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), WithBaseURL(srv.URL))
			l, err := c.FetchListing(context.Background(), c.NewURL("stocks", "", 100))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "reddit: fetch listing")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAfter, l.Data.After)
			assert.Len(t, l.Data.Children, tt.wantLen)
		})
	}
}
