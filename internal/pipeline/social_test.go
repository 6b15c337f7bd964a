package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/collect"
	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/social"
)

// memListing serves fixed pages keyed by "source/after".
type memListing struct {
	pages map[string]collect.Page
}

func (m *memListing) PageURL(source, after string, _ int) string {
	return fmt.Sprintf("mem://%s/%s", source, after)
}

func (m *memListing) FetchPage(_ context.Context, pageURL string) (collect.Page, error) {
	p, ok := m.pages[pageURL]
	if !ok {
		return collect.Page{}, errors.New("not found")
	}
	return p, nil
}

func post(id, title, body string) map[string]any {
	return map[string]any{
		"id":          id,
		"title":       title,
		"selftext":    body,
		"subreddit":   "stocks",
		"author":      "u_" + id,
		"created_utc": 1767614400.0, // 2026-01-05T12:00:00Z
		"permalink":   "/r/stocks/comments/" + id,
	}
}

func TestSocial_Run(t *testing.T) {
	src := &memListing{pages: map[string]collect.Page{
		"mem://stocks/": {Items: []map[string]any{
			post("p1", "ACME to the moon", ""),
			post("p2", "Widgets are hot", "Acme and Beta both sell them"),
		}, After: "t3_p2"},
		"mem://stocks/t3_p2": {Items: []map[string]any{
			post("p2", "dup", ""),
			post("p3", "nothing here", "unrelated"),
		}},
		"mem://investing/": {Items: []map[string]any{
			post("p4", "$BETA earnings", ""),
		}},
	}}
	st := newTestStore(t)
	out := filepath.Join(t.TempDir(), "social.jsonl")

	res, err := NewSocial(collect.NewPaged(src, social.NormalizeSubmission), st).Run(context.Background(), SocialOptions{
		Tickers:    []string{"acme", "BETA"},
		Keywords:   model.ConsensusSet{"ACME": {"widgets"}},
		Subreddits: []string{"stocks", "investing"},
		Params:     collect.PagedParams{Limit: 100, MaxPages: 5},
		Output:     out,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Posts)
	assert.Equal(t, []string{"mem://stocks/", "mem://stocks/t3_p2", "mem://investing/"}, res.Visited)
	assert.Equal(t, []string{"ACME", "BETA"}, res.Tickers)

	rows := readLines[model.MatchedPost](t, out)
	require.Len(t, rows, 4)
	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.ID+"="+r.MatchedTerm)
	}
	assert.Equal(t, []string{
		"reddit:p1:ACME=ACME",
		"reddit:p2:ACME=Widgets",
		"reddit:p2:BETA=Beta",
		"reddit:p4:BETA=$BETA",
	}, got)
	assert.Equal(t, "https://www.reddit.com/r/stocks/comments/p1", rows[0].Permalink)
	assert.Equal(t, "2026-01-05", rows[0].DateUTC)

	require.NotNil(t, res.Index)
	assert.Equal(t, 4, res.Index.New)

	assert.Equal(t, filepath.Join(filepath.Dir(out), DefaultPoolFile), res.PoolOutput)
	pool := readLines[model.SocialPost](t, res.PoolOutput)
	poolIDs := make([]string, 0, len(pool))
	for _, p := range pool {
		poolIDs = append(poolIDs, p.ID)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, poolIDs)

	run, err := st.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusDone, run.Status)
	assert.Equal(t, 4, run.RowsWritten)
}

func TestSocial_MissingConfig(t *testing.T) {
	_, err := NewSocial(collect.NewPaged(&memListing{}, social.NormalizeSubmission), nil).Run(context.Background(), SocialOptions{})
	var missing *config.MissingError
	require.ErrorAs(t, err, &missing)
	require.Len(t, missing.Missing, 2)
	assert.Equal(t, "universe.tickers", missing.Missing[0].Key)
	assert.Equal(t, "social.subreddits", missing.Missing[1].Key)
}

func TestSocial_EmptyPoolWritesEmptyFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "social.jsonl")
	res, err := NewSocial(collect.NewPaged(&memListing{}, social.NormalizeSubmission), nil).Run(context.Background(), SocialOptions{
		Tickers:    []string{"ACME"},
		Subreddits: []string{"stocks"},
		Params:     collect.PagedParams{Limit: 100, MaxPages: 2},
		Output:     out,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.Equal(t, []string{"mem://stocks/"}, res.Visited)
	assert.Empty(t, readLines[model.MatchedPost](t, out))
	assert.FileExists(t, res.PoolOutput)
	assert.Empty(t, readLines[model.SocialPost](t, res.PoolOutput))
}
