package consensus

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/resilience"
)

// Generator returns free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultQueryRetries is the retry bound for a single consensus query.
const DefaultQueryRetries = 2

// QueryOptions configures NewQuery.
type QueryOptions struct {
	// Retries after the first attempt. Zero disables retries; a negative
	// value selects DefaultQueryRetries.
	Retries int
	// Backoff between attempts. Default: 1s.
	Backoff time.Duration
	// Breaker guards the generator. Optional.
	Breaker *resilience.CircuitBreaker
}

// errTooFew marks a response that parsed but held too few candidates.
var errTooFew = eris.New("consensus: too few candidates")

// NewQuery builds a QueryFunc that prompts gen through ex. Transport errors
// and off-format responses are retried; exhausted attempts and an open
// breaker yield an empty answer.
func NewQuery(gen Generator, ex Extractor, opts QueryOptions) QueryFunc {
	if opts.Retries < 0 {
		opts.Retries = DefaultQueryRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	retry := resilience.RetryConfig{
		InitialBackoff: opts.Backoff,
		MaxBackoff:     opts.Backoff,
		Multiplier:     1,
		ShouldRetry: func(err error) bool {
			return !errors.Is(err, resilience.ErrCircuitOpen)
		},
		OnRetry: resilience.RetryLogger("consensus", ex.Name),
	}.WithRetries(opts.Retries)

	generate := gen.Generate
	if opts.Breaker != nil {
		generate = func(ctx context.Context, prompt string) (string, error) {
			return resilience.ExecuteVal(ctx, opts.Breaker, func(ctx context.Context) (string, error) {
				return gen.Generate(ctx, prompt)
			})
		}
	}

	return func(ctx context.Context, subject string, k int) []string {
		prompt := ex.Prompt(subject, k)
		out, err := resilience.DoVal(ctx, retry, func(ctx context.Context) ([]string, error) {
			text, err := generate(ctx, prompt)
			if err != nil {
				return nil, err
			}
			cands := ex.Extract(text, subject, k)
			if len(cands) < ex.MinAccepted(k) {
				return nil, eris.Wrapf(errTooFew, "%s for %s: got %d", ex.Name, subject, len(cands))
			}
			return cands, nil
		})
		if err != nil {
			zap.L().Warn("consensus query gave no answer",
				zap.String("extractor", ex.Name),
				zap.String("subject", subject),
				zap.Error(err),
			)
			return nil
		}
		return out
	}
}
