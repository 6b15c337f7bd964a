package pipeline

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// DefaultSpanDays is the window length used when no start date is given.
const DefaultSpanDays = 7

// ResolveSubjects returns the base subjects followed by each base subject's
// derived peers, upper-cased and deduplicated in first-seen order.
func ResolveSubjects(base []string, derived model.ConsensusSet) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range base {
		add(s)
	}
	for _, s := range base {
		for _, p := range derived[strings.ToUpper(strings.TrimSpace(s))] {
			add(p)
		}
	}
	return out
}

// ResolveWindow parses optional YYYY-MM-DD bounds. A missing end is today in
// UTC; a missing start is end minus spanDays. Reversed bounds are swapped.
func ResolveWindow(start, end string, spanDays int, now time.Time) (time.Time, time.Time, error) {
	if spanDays <= 0 {
		spanDays = DefaultSpanDays
	}

	to := dateOf(now.UTC())
	if end != "" {
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(end))
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "pipeline: parse end date %q", end)
		}
		to = t
	}

	from := to.AddDate(0, 0, -spanDays)
	if start != "" {
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(start))
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "pipeline: parse start date %q", start)
		}
		from = t
	}

	if from.After(to) {
		from, to = to, from
	}
	return from, to, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
