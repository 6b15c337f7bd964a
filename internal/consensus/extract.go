package consensus

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Extractor turns a free-form generator response into candidates.
type Extractor struct {
	// Name labels logs and breaker state.
	Name string
	// Prompt renders the generator prompt for subject and k.
	Prompt func(subject string, k int) string
	// Extract pulls up to k distinct candidates from text, in order.
	Extract func(text, subject string, k int) []string
	// MinAccepted is the smallest candidate count accepted as a valid answer.
	MinAccepted func(k int) int
	// Normalize folds a candidate before voting.
	Normalize func(string) string
}

var (
	tickerRe  = regexp.MustCompile(`\b[A-Z]{1,5}(?:\.[A-Z])?\b`)
	keywordRe = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9]+\b`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

var bannedKeywords = map[string]struct{}{
	"stock":      {},
	"price":      {},
	"market":     {},
	"trading":    {},
	"investing":  {},
	"investment": {},
	"news":       {},
	"analysis":   {},
}

// Peers extracts ticker symbols of companies in the subject's industry.
var Peers = Extractor{
	Name: "peers",
	Prompt: func(subject string, k int) string {
		return fmt.Sprintf("Give %d US stock TICKERS of companies operating in the same industry as %s.\n"+
			"Output ONLY tickers separated by spaces or newlines.\n"+
			"No punctuation, no bullets, no numbering, no extra text.", k, subject)
	},
	Extract: func(text, subject string, k int) []string {
		self := strings.ToUpper(strings.TrimSpace(subject))
		return firstDistinct(tickerRe.FindAllString(text, -1), k, func(t string) bool {
			return t == self
		})
	},
	MinAccepted: func(k int) int { return max(2, k/2) },
	Normalize:   NormalizeTicker,
}

// Keywords extracts single-word search keywords for the subject.
var Keywords = Extractor{
	Name: "keywords",
	Prompt: func(subject string, k int) string {
		return fmt.Sprintf("Give %d single-word keywords for %s.\n"+
			"Output ONLY the words separated by spaces or newlines.\n"+
			"No numbering, no bullets, no extra text.\n"+
			"No generic words like stock price market trading investing.", k, subject)
	},
	Extract: func(text, _ string, k int) []string {
		return firstDistinct(keywordRe.FindAllString(strings.ToLower(text), -1), k, func(w string) bool {
			_, banned := bannedKeywords[w]
			return banned
		})
	},
	MinAccepted: func(k int) int { return max(3, k/2) },
	Normalize:   NormalizeKeyword,
}

// firstDistinct keeps the first k distinct words not skipped. A k below one
// yields nothing.
func firstDistinct(words []string, k int, skip func(string) bool) []string {
	if k < 1 {
		return nil
	}
	out := make([]string, 0, k)
	seen := make(map[string]struct{}, k)
	for _, w := range words {
		if skip(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == k {
			break
		}
	}
	return out
}

// NormalizeTicker applies NFKC, collapses whitespace and upper-cases.
func NormalizeTicker(s string) string {
	return cases.Upper(language.Und).String(squash(s))
}

// NormalizeKeyword applies NFKC, collapses whitespace and lower-cases.
func NormalizeKeyword(s string) string {
	return cases.Lower(language.Und).String(squash(s))
}

func squash(s string) string {
	s = norm.NFKC.String(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
