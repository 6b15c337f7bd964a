package social

import (
	"context"

	"github.com/sells-group/sentiment-cli/internal/collect"
	"github.com/sells-group/sentiment-cli/pkg/reddit"
)

// RedditSource adapts a reddit.Client to collect.ListingSource.
type RedditSource struct {
	client *reddit.Client
}

// NewRedditSource wraps client.
func NewRedditSource(client *reddit.Client) *RedditSource {
	return &RedditSource{client: client}
}

// PageURL returns the /new listing URL for subreddit.
func (s *RedditSource) PageURL(subreddit, after string, limit int) string {
	return s.client.NewURL(subreddit, after, limit)
}

// FetchPage fetches one listing page and unwraps each child's data object.
func (s *RedditSource) FetchPage(ctx context.Context, pageURL string) (collect.Page, error) {
	l, err := s.client.FetchListing(ctx, pageURL)
	if err != nil {
		return collect.Page{}, err
	}
	items := make([]map[string]any, 0, len(l.Data.Children))
	for _, c := range l.Data.Children {
		items = append(items, c.Data)
	}
	return collect.Page{Items: items, After: l.Data.After}, nil
}
