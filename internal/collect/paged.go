package collect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/resilience"
)

// Page is one page of a cursor-paginated listing. Items keep the upstream
// shape only until they are normalized.
type Page struct {
	Items []map[string]any
	After string
}

// ListingSource builds page URLs and fetches pages for a listing API.
type ListingSource interface {
	PageURL(source, after string, limit int) string
	FetchPage(ctx context.Context, pageURL string) (Page, error)
}

// NormalizeFunc converts a raw listing item into a SocialPost, resolving
// missing fields to typed defaults.
type NormalizeFunc func(item map[string]any) model.SocialPost

// PagedParams configures one listing scan.
type PagedParams struct {
	Limit         int
	MaxPages      int
	Pause         time.Duration
	IncludeOver18 bool
}

// Paged walks a cursor-paginated listing up to a page cap.
type Paged struct {
	src       ListingSource
	normalize NormalizeFunc
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewPaged creates a Paged collector.
func NewPaged(src ListingSource, normalize NormalizeFunc) *Paged {
	return &Paged{src: src, normalize: normalize, sleep: resilience.Sleep}
}

// Collect scans source until the cursor is exhausted or params.MaxPages pages
// have been fetched. It returns the normalized posts, deduplicated by id, and
// the page URLs visited in order. A page that cannot be fetched ends the scan
// with what was collected so far.
func (p *Paged) Collect(ctx context.Context, source string, params PagedParams) ([]model.SocialPost, []string) {
	return p.collect(ctx, source, params, make(map[string]struct{}))
}

// CollectAll scans each source in turn and returns the combined pool,
// deduplicated by id across sources, and all page URLs visited.
func (p *Paged) CollectAll(ctx context.Context, sources []string, params PagedParams) ([]model.SocialPost, []string) {
	seen := make(map[string]struct{})
	urls := newOrderedSet()
	var pool []model.SocialPost
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		posts, visited := p.collect(ctx, src, params, seen)
		pool = append(pool, posts...)
		urls.addAll(visited)
	}
	return pool, urls.items
}

func (p *Paged) collect(ctx context.Context, source string, params PagedParams, seen map[string]struct{}) ([]model.SocialPost, []string) {
	if params.MaxPages <= 0 {
		params.MaxPages = 1
	}

	var out []model.SocialPost
	urls := newOrderedSet()
	after := ""

	for pages := 0; pages < params.MaxPages; {
		pageURL := p.src.PageURL(source, after, params.Limit)
		urls.add(pageURL)

		page, err := p.src.FetchPage(ctx, pageURL)
		if err != nil {
			zap.L().Warn("listing page fetch failed, stopping scan",
				zap.String("source", source),
				zap.String("url", pageURL),
				zap.Error(err),
			)
			break
		}

		for _, item := range page.Items {
			post := p.normalize(item)
			if post.ID == "" {
				continue
			}
			if post.Over18 && !params.IncludeOver18 {
				continue
			}
			if _, dup := seen[post.ID]; dup {
				continue
			}
			seen[post.ID] = struct{}{}
			out = append(out, post)
		}

		after = page.After
		pages++
		if after == "" || pages >= params.MaxPages {
			break
		}
		if err := p.sleep(ctx, params.Pause); err != nil {
			break
		}
	}

	return out, urls.items
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) addAll(vs []string) {
	for _, v := range vs {
		s.add(v)
	}
}
