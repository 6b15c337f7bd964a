package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  hello   world \n", "hello world"},
		{"a\x00b", "a b"},
		{"\t\n ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeSubmission(t *testing.T) {
	p := NormalizeSubmission(map[string]any{
		"id":           "abc",
		"name":         "t3_abc",
		"subreddit":    "stocks",
		"author":       "trader1",
		"created_utc":  float64(1767225600),
		"title":        "  ACME   earnings ",
		"selftext":     "beat\n\nestimates",
		"score":        float64(42),
		"num_comments": float64(7),
		"permalink":    "/r/stocks/comments/abc/acme/",
		"url":          "https://example.com/acme",
		"over_18":      false,
	})

	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "t3_abc", p.Fullname)
	assert.Equal(t, Platform, p.Platform)
	assert.Equal(t, "submission", p.Type)
	assert.Equal(t, "2026-01-01", p.DateUTC)
	assert.Equal(t, "ACME earnings", p.Title)
	assert.Equal(t, "beat estimates", p.Selftext)
	assert.Equal(t, "ACME earnings beat estimates", p.Text)
	assert.Equal(t, 42, p.Score)
	assert.Equal(t, 7, p.NumComments)
	assert.Equal(t, "https://www.reddit.com/r/stocks/comments/abc/acme/", p.Permalink)
	assert.Equal(t, "https://example.com/acme", p.PostURL)
	assert.False(t, p.Over18)
}

func TestNormalizeSubmission_MissingFields(t *testing.T) {
	p := NormalizeSubmission(map[string]any{
		"title":       nil,
		"score":       "not a number",
		"created_utc": "1767225600.5",
		"over_18":     "yes",
		"permalink":   "https://already.absolute/x",
	})

	assert.Empty(t, p.ID)
	assert.Empty(t, p.Title)
	assert.Empty(t, p.Text)
	assert.Zero(t, p.Score)
	assert.Equal(t, 1767225600.5, p.CreatedUTC)
	assert.Equal(t, "2026-01-01", p.DateUTC)
	assert.False(t, p.Over18)
	assert.Equal(t, "https://already.absolute/x", p.Permalink)

	empty := NormalizeSubmission(nil)
	assert.Empty(t, empty.DateUTC)
	assert.Equal(t, Platform, empty.Platform)
}
