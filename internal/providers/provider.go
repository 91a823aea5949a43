// Package providers implements the quote source adapters and the
// fallback chain that sits in front of them. Every provider exposes
// the same fetch-quote capability; the chain iterates a statically
// ordered list of them rather than inspecting types at runtime.
package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/swingscan/swingscan/internal/domain"
)

// Provider is the uniform fetch-quote capability every source
// implements.
type Provider interface {
	Name() string
	FetchQuote(ctx context.Context, sym domain.Symbol) (*domain.Quote, error)
}

// httpDoer lets tests substitute the transport.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
