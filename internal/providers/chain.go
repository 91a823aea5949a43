package providers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
	"github.com/swingscan/swingscan/internal/metrics"
)

// SleepFunc blocks for d or until ctx is done. Tests inject a no-op so
// backoff paths run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Chain tries providers in a fixed preference order until one returns
// a normalized quote. Transient failures are retried with exponential
// backoff inside a provider; permanent failures skip straight to the
// next one. Each provider gets a token-bucket rate limiter (cumulative
// across all symbols in the scan) and a circuit breaker so a dead
// provider stops costing retries after a few symbols.
type Chain struct {
	providers  []Provider
	limiters   map[string]*rate.Limiter
	breakers   map[string]*gobreaker.CircuitBreaker
	maxRetries int
	backoff    time.Duration
	sleep      SleepFunc
	log        zerolog.Logger
}

// NewChain orders providers as given; the caller appends key-gated
// providers in credential-presence order after the keyless primary.
func NewChain(cfg config.ProvidersConfig, log zerolog.Logger, providers ...Provider) *Chain {
	c := &Chain{
		providers:  providers,
		limiters:   make(map[string]*rate.Limiter, len(providers)),
		breakers:   make(map[string]*gobreaker.CircuitBreaker, len(providers)),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff(),
		sleep:      realSleep,
		log:        log,
	}
	for _, p := range providers {
		rl, ok := cfg.RateLimits[p.Name()]
		if !ok {
			rl = config.RateLimit{RPS: 1, Burst: 1}
		}
		c.limiters[p.Name()] = rate.NewLimiter(rate.Limit(rl.RPS), rl.Burst)
		c.breakers[p.Name()] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    p.Name(),
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("provider", name).
					Str("from", from.String()).Str("to", to.String()).
					Msg("provider breaker state change")
			},
		})
	}
	return c
}

// WithSleep replaces the backoff sleep, for tests.
func (c *Chain) WithSleep(s SleepFunc) *Chain {
	c.sleep = s
	return c
}

// Providers returns the configured provider names in preference order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Fetch returns the first successful normalized quote, or a
// *DataUnavailableError carrying every provider's failure reason.
func (c *Chain) Fetch(ctx context.Context, sym domain.Symbol) (*domain.Quote, error) {
	attempts := make([]domain.SourceFailure, 0, len(c.providers))

	for _, p := range c.providers {
		q, err := c.tryProvider(ctx, p, sym)
		if err == nil {
			if len(attempts) > 0 {
				c.log.Info().Str("symbol", sym.Ticker).Str("provider", p.Name()).
					Int("failed_before", len(attempts)).Msg("fallback provider answered")
				metrics.ProviderFallbacks.WithLabelValues(p.Name()).Inc()
			}
			return q, nil
		}
		attempts = append(attempts, domain.SourceFailure{Provider: p.Name(), Reason: err.Error()})
		c.log.Warn().Str("symbol", sym.Ticker).Str("provider", p.Name()).
			Err(err).Msg("provider failed, trying next")

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &DataUnavailableError{Symbol: sym.Ticker, Attempts: attempts}
}

// tryProvider runs the per-provider retry state machine: attempt
// count and next delay advance deterministically, transient failures
// burn the retry budget, permanent ones end it immediately.
func (c *Chain) tryProvider(ctx context.Context, p Provider, sym domain.Symbol) (*domain.Quote, error) {
	delay := c.backoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}

		if err := c.limiters[p.Name()].Wait(ctx); err != nil {
			return nil, err
		}

		metrics.ProviderRequests.WithLabelValues(p.Name()).Inc()
		result, err := c.breakers[p.Name()].Execute(func() (interface{}, error) {
			return p.FetchQuote(ctx, sym)
		})
		if err == nil {
			return result.(*domain.Quote), nil
		}
		metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Breaker already decided this provider is down; no point
			// burning the retry budget.
			return nil, err
		}

		var perr *ProviderError
		if errors.As(err, &perr) && !perr.Transient() {
			return nil, err
		}
		c.log.Debug().Str("symbol", sym.Ticker).Str("provider", p.Name()).
			Int("attempt", attempt+1).Dur("next_delay", delay).
			Err(err).Msg("transient failure, retrying")
	}

	return nil, lastErr
}
