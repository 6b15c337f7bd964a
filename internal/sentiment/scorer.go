// Package sentiment scores text polarity. Scorers are explicit components
// constructed once and passed to the scoring run.
package sentiment

import (
	"context"
	"strings"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// Scorer maps text to polarity scores.
type Scorer interface {
	Score(ctx context.Context, text string) (model.Scores, error)
}

// isBlank reports whether text has nothing to score.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
