package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// Cached memoizes another scorer's results keyed by a hash of the text.
// Errors are not cached.
type Cached struct {
	inner Scorer
	cache *cache.Cache
}

// NewCached wraps inner with an in-memory cache whose entries expire after ttl.
func NewCached(inner Scorer, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cached{inner: inner, cache: cache.New(ttl, 2*ttl)}
}

// Score implements Scorer.
func (c *Cached) Score(ctx context.Context, text string) (model.Scores, error) {
	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:])
	if v, ok := c.cache.Get(key); ok {
		return v.(model.Scores), nil
	}
	s, err := c.inner.Score(ctx, text)
	if err != nil {
		return model.Scores{}, err
	}
	c.cache.SetDefault(key, s)
	return s, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int { return c.cache.ItemCount() }
