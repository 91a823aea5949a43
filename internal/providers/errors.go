package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/swingscan/swingscan/internal/domain"
)

// FailureKind classifies a provider failure for retry policy.
type FailureKind int

const (
	// FailureTransient covers timeouts, 5xx and rate-limit responses.
	// Retried with backoff before the provider is abandoned.
	FailureTransient FailureKind = iota
	// FailurePermanent covers auth failures, other 4xx and malformed
	// payloads. The provider is abandoned immediately.
	FailurePermanent
)

func (k FailureKind) String() string {
	if k == FailureTransient {
		return "transient"
	}
	return "permanent"
}

// ProviderError is a typed failure from one provider for one symbol.
type ProviderError struct {
	Provider string
	Symbol   string
	Kind     FailureKind
	Status   int // HTTP status when applicable, 0 otherwise
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s: http %d: %v", e.Provider, e.Symbol, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether the error should be retried.
func (e *ProviderError) Transient() bool { return e.Kind == FailureTransient }

// classifyStatus maps an HTTP status to a failure kind. 429 is the
// rate-limit signal and counts as transient; every other 4xx is
// permanent.
func classifyStatus(status int) FailureKind {
	if status == 429 || status >= 500 {
		return FailureTransient
	}
	return FailurePermanent
}

// classifyErr maps a transport-level error to a failure kind.
func classifyErr(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTransient
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTransient
	}
	// Connection resets and refusals read as transient; a provider
	// blip should not skip the retry budget.
	msg := err.Error()
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") {
		return FailureTransient
	}
	return FailurePermanent
}

// DataUnavailableError means every provider in the chain failed for a
// symbol. It carries the per-provider reasons so the scan metadata
// stays actionable.
type DataUnavailableError struct {
	Symbol   string
	Attempts []domain.SourceFailure
}

func (e *DataUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Reason))
	}
	return fmt.Sprintf("data unavailable for %s (%s)", e.Symbol, strings.Join(parts, "; "))
}
