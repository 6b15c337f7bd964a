package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/sentiment-cli/internal/resilience"
)

const (
	defaultUserAgent = "sentiment-cli/1.0"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 32 << 20
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Backoff is the delay before the first retry. Default: 500ms.
	Backoff time.Duration

	// RateLimits maps a host to its sustained requests-per-second budget.
	RateLimits map[string]rate.Limit
}

// AdaptiveLimiter wraps a rate.Limiter that halves its rate on 429 responses
// and recovers by 20% per success, bounded to [initial/4, initial].
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess raises the rate by 20%, up to the initial rate.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.initialRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate, down to a quarter of the initial rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements Fetcher using net/http with per-host rate limiting
// and bounded retries.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	retry    resilience.RetryConfig
	limiters map[string]*AdaptiveLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	retry := resilience.DefaultRetryConfig().WithRetries(opts.MaxRetries)
	if opts.Backoff > 0 {
		retry.InitialBackoff = opts.Backoff
	}
	retry.OnRetry = resilience.RetryLogger("http", "get")

	limiters := make(map[string]*AdaptiveLimiter, len(opts.RateLimits))
	for host, r := range opts.RateLimits {
		limiters[host] = NewAdaptiveLimiter(r, 1)
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		retry:    retry,
		limiters: limiters,
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *AdaptiveLimiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return f.limiters[u.Host]
}

// GetJSON issues a GET and decodes the JSON body into out. Failures are
// returned as *Error; transient ones are retried up to MaxRetries times.
func (f *HTTPFetcher) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	return resilience.Do(ctx, f.retry, func(ctx context.Context) error {
		body, err := f.getOnce(ctx, rawURL, header, "application/json")
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &Error{Kind: KindFormat, URL: rawURL, Detail: snippet(body, 400), Err: err}
		}
		return nil
	})
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	body, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]byte, error) {
		return f.getOnce(ctx, rawURL, nil, "*/*")
	})
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *HTTPFetcher) getOnce(ctx context.Context, rawURL string, header http.Header, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", accept)
	}

	lim := f.limiterFor(rawURL)
	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTransport, URL: rawURL, Detail: "rate limiter wait", Err: err}
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: rawURL, Detail: "request failed", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: rawURL, Detail: "read body", Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests && lim != nil {
		lim.OnRateLimit()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindStatus, URL: rawURL, Status: resp.StatusCode, Detail: snippet(body, 200)}
	}

	if lim != nil {
		lim.OnSuccess()
	}
	return body, nil
}

// KindOf returns the failure kind of err, or "" when err is not a fetch error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
