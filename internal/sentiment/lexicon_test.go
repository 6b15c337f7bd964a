package sentiment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/model"
)

func TestLexicon_BlankIsNeutral(t *testing.T) {
	l := NewLexicon()
	for _, text := range []string{"", "   ", "\n\t"} {
		got, err := l.Score(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, model.Scores{Neg: 0, Neu: 1, Pos: 0, Compound: 0}, got)
	}
}

func TestLexicon_Polarity(t *testing.T) {
	l := NewLexicon()

	pos := l.Polarity("ACME posts a great quarter with strong results")
	neg := l.Polarity("ACME reports terrible losses and a bad outlook")
	neutral := l.Polarity("ACME holds annual meeting on Tuesday")

	assert.Greater(t, pos.Compound, 0.0)
	assert.Less(t, neg.Compound, 0.0)
	assert.InDelta(t, 0.0, neutral.Compound, 1e-9)

	for _, s := range []model.Scores{pos, neg, neutral} {
		assert.InDelta(t, 1.0, s.Neg+s.Neu+s.Pos, 0.01)
		assert.GreaterOrEqual(t, s.Compound, -1.0)
		assert.LessOrEqual(t, s.Compound, 1.0)
	}
}

func TestLexicon_Rules(t *testing.T) {
	l := NewLexicon()

	base := l.Polarity("results were good").Compound
	assert.Greater(t, l.Polarity("results were very good").Compound, base, "booster")
	assert.Greater(t, l.Polarity("results were GOOD").Compound, base, "caps")
	assert.Greater(t, l.Polarity("results were good!!").Compound, base, "exclamation")
	assert.Less(t, l.Polarity("results were not good").Compound, 0.0, "negation")

	mixed := l.Polarity("growth was good but guidance was terrible")
	assert.Less(t, mixed.Compound, 0.0, "clause after but dominates")
}

func TestLexicon_Concurrent(t *testing.T) {
	l := NewLexicon()
	want := l.Polarity("a great quarter")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := l.Score(context.Background(), "a great quarter")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
