package consensus

import (
	"sort"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// Tally counts votes per candidate and remembers the order in which
// candidates were first seen. Ranking ties resolve to that order.
type Tally struct {
	order  []string
	counts map[string]int
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

// Add gives one vote to each candidate.
func (t *Tally) Add(candidates ...string) {
	for _, c := range candidates {
		if _, ok := t.counts[c]; !ok {
			t.order = append(t.order, c)
		}
		t.counts[c]++
	}
}

// Len returns the number of distinct candidates.
func (t *Tally) Len() int { return len(t.order) }

// Votes returns the vote count for candidate.
func (t *Tally) Votes(candidate string) int { return t.counts[candidate] }

// Top returns at most k candidates by descending votes.
func (t *Tally) Top(k int) []model.Candidate {
	ranked := make([]model.Candidate, len(t.order))
	for i, c := range t.order {
		ranked[i] = model.Candidate{Value: c, Votes: t.counts[c]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
