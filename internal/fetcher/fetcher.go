// Package fetcher issues single rate-limited HTTP requests against upstream
// data sources and reports failures as typed errors.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sells-group/sentiment-cli/internal/resilience"
)

// JSONGetter fetches a URL and decodes its JSON body into out.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, header http.Header, out any) error
}

// Fetcher defines the request primitives used by the collectors.
type Fetcher interface {
	JSONGetter

	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Kind classifies a fetch failure.
type Kind string

const (
	// KindTransport covers timeouts, connection errors and cancelled requests.
	KindTransport Kind = "transport"
	// KindStatus covers non-2xx responses.
	KindStatus Kind = "status"
	// KindFormat covers bodies that are not the expected JSON shape.
	KindFormat Kind = "format"
)

// Error is the failure result of a single request. Callers branch on Kind to
// decide whether to retry, skip or propagate.
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: http %d: %s", e.URL, e.Status, e.Detail)
	case KindFormat:
		return fmt.Sprintf("fetch %s: non-JSON response: %s", e.URL, e.Detail)
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Detail, e.Err)
		}
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Detail)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether repeating the request may succeed. Transport and
// format failures are retried; status failures only for 408/429/5xx.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindStatus:
		return resilience.IsTransientHTTPStatus(e.Status)
	default:
		return true
	}
}

// snippet trims a response body for inclusion in error details.
func snippet(body []byte, n int) string {
	if len(body) > n {
		body = body[:n]
	}
	out := make([]rune, 0, len(body))
	for _, r := range string(body) {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
