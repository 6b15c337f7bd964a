// Package model defines the records that flow through the ingestion pipelines.
package model

// RawArticle is a company-news item as returned by the upstream news API,
// before normalization.
type RawArticle struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Datetime int64  `json:"datetime"` // epoch seconds
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// DedupKey returns the (url-or-headline, timestamp) pair used to discard
// repeats across overlapping fetch windows.
func (a RawArticle) DedupKey() ArticleKey {
	ref := a.URL
	if ref == "" {
		ref = a.Headline
	}
	return ArticleKey{Ref: ref, Timestamp: a.Datetime}
}

// ArticleKey identifies a raw article for deduplication.
type ArticleKey struct {
	Ref       string
	Timestamp int64
}

// NewsRecord is a normalized news item for one ticker.
type NewsRecord struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	Date        string `json:"date"`         // YYYY-MM-DD, UTC
	PublishedAt string `json:"published_at"` // RFC 3339, UTC
	Title       string `json:"title"`
	Link        string `json:"link"`
	Publisher   string `json:"publisher"`
	Summary     string `json:"summary"`
}

// SocialPost is a normalized listing submission.
type SocialPost struct {
	ID          string  `json:"id"`
	Fullname    string  `json:"fullname"`
	Platform    string  `json:"platform"`
	Type        string  `json:"type"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	DateUTC     string  `json:"date_utc,omitempty"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Text        string  `json:"text"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	PostURL     string  `json:"post_url"`
	Over18      bool    `json:"over_18"`
}

// MatchedPost pairs a social post with a ticker whose keyword set it matched.
type MatchedPost struct {
	ID          string  `json:"id"`
	SourceID    string  `json:"source_id"`
	Platform    string  `json:"platform"`
	Ticker      string  `json:"ticker"`
	MatchedTerm string  `json:"matched_term"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	DateUTC     string  `json:"date_utc,omitempty"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Text        string  `json:"text"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	PostURL     string  `json:"post_url"`
}

// Scores is the output of a sentiment scorer. Neg, Neu and Pos are in [0,1];
// Compound is a signed polarity in [-1,1].
type Scores struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// NeutralScores is the score assigned to empty text.
var NeutralScores = Scores{Neg: 0, Neu: 1, Pos: 0, Compound: 0}

// ScoredRecord is a sentiment score keyed by the identifier of the record it
// was derived from.
type ScoredRecord struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	MatchTerm string  `json:"match_term,omitempty"`
	Date      string  `json:"date"`
	Neg       float64 `json:"neg"`
	Neu       float64 `json:"neu"`
	Pos       float64 `json:"pos"`
	Compound  float64 `json:"compound"`
	Permalink string  `json:"permalink"`
}

// Candidate is a consensus candidate with its vote count.
type Candidate struct {
	Value string `json:"candidate"`
	Votes int    `json:"votes"`
}

// ConsensusResult is the ranked outcome of consensus sampling for one subject.
type ConsensusResult struct {
	Subject string      `json:"subject"`
	TopK    []Candidate `json:"top_k"`
}

// Values returns the winning candidates in rank order.
func (r ConsensusResult) Values() []string {
	out := make([]string, 0, len(r.TopK))
	for _, c := range r.TopK {
		out = append(out, c.Value)
	}
	return out
}

// ConsensusSet maps a subject to its ordered winning candidates. It is the
// persisted form of a batch of consensus results.
type ConsensusSet map[string][]string
