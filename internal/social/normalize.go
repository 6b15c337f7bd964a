// Package social turns subreddit listings into normalized posts and matches
// them against per-ticker keyword sets.
package social

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// Platform is the platform tag written on every post and match.
const Platform = "reddit"

const permalinkHost = "https://www.reddit.com"

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText replaces NUL bytes and collapses runs of whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\x00", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeSubmission converts the data object of a listing child into a
// SocialPost. Missing or mistyped fields resolve to zero values.
func NormalizeSubmission(data map[string]any) model.SocialPost {
	title := CleanText(str(data, "title"))
	selftext := CleanText(str(data, "selftext"))
	created := num(data, "created_utc")

	permalink := str(data, "permalink")
	if strings.HasPrefix(permalink, "/") {
		permalink = permalinkHost + permalink
	}

	p := model.SocialPost{
		ID:          str(data, "id"),
		Fullname:    str(data, "name"),
		Platform:    Platform,
		Type:        "submission",
		Subreddit:   str(data, "subreddit"),
		Author:      str(data, "author"),
		CreatedUTC:  created,
		Title:       title,
		Selftext:    selftext,
		Text:        CleanText(title + "\n" + selftext),
		Score:       int(num(data, "score")),
		NumComments: int(num(data, "num_comments")),
		Permalink:   permalink,
		PostURL:     str(data, "url"),
		Over18:      boolean(data, "over_18"),
	}
	if created > 0 {
		p.DateUTC = time.Unix(int64(created), 0).UTC().Format(time.DateOnly)
	}
	return p
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func boolean(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}
