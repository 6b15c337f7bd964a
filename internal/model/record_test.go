package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawArticle_DedupKey(t *testing.T) {
	a := RawArticle{URL: "https://example.com/a", Headline: "Acme beats", Datetime: 1700000000}
	assert.Equal(t, ArticleKey{Ref: "https://example.com/a", Timestamp: 1700000000}, a.DedupKey())

	noURL := RawArticle{Headline: "Acme beats", Datetime: 1700000000}
	assert.Equal(t, ArticleKey{Ref: "Acme beats", Timestamp: 1700000000}, noURL.DedupKey())

	later := noURL
	later.Datetime++
	assert.NotEqual(t, noURL.DedupKey(), later.DedupKey())
}

func TestConsensusResult_Values(t *testing.T) {
	r := ConsensusResult{
		Subject: "ACME",
		TopK: []Candidate{
			{Value: "BETA", Votes: 9},
			{Value: "GAMA", Votes: 4},
		},
	}
	assert.Equal(t, []string{"BETA", "GAMA"}, r.Values())
	assert.Empty(t, ConsensusResult{Subject: "ACME"}.Values())
}

func TestNeutralScores(t *testing.T) {
	assert.Equal(t, Scores{Neu: 1}, NeutralScores)
}

func TestScoredRecord_OmitsEmptyMatchTerm(t *testing.T) {
	data, err := json.Marshal(ScoredRecord{ID: "finnhub:abc:ACME", Subject: "ACME", Date: "2024-01-02", Neu: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "match_term")

	data, err = json.Marshal(ScoredRecord{ID: "reddit:p1:ACME", MatchTerm: "widgets"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"match_term":"widgets"`)
}

func TestRawArticle_DecodesUpstreamShape(t *testing.T) {
	raw := `{"category":"company","datetime":1704153600,"headline":"Acme beats","id":42,"related":"ACME","source":"Reuters","summary":"Up.","url":"https://example.com/a"}`

	var a RawArticle
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, int64(42), a.ID)
	assert.Equal(t, int64(1704153600), a.Datetime)
	assert.Equal(t, "Reuters", a.Source)
}
