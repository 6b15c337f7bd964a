package sentiment

import (
	"context"

	"github.com/jonreiter/govader"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// Lexicon scores text with the VADER rule set and its full word lexicon.
// It is safe for concurrent use.
type Lexicon struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewLexicon returns a VADER scorer.
func NewLexicon() *Lexicon {
	return &Lexicon{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Score implements Scorer. It never fails.
func (l *Lexicon) Score(_ context.Context, text string) (model.Scores, error) {
	return l.Polarity(text), nil
}

// Polarity scores text. Blank text is neutral without consulting the
// analyzer.
func (l *Lexicon) Polarity(text string) model.Scores {
	if isBlank(text) {
		return model.NeutralScores
	}
	s := l.sia.PolarityScores(text)
	return model.Scores{
		Neg:      s.Negative,
		Neu:      s.Neutral,
		Pos:      s.Positive,
		Compound: s.Compound,
	}
}
