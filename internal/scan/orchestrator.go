// Package scan drives one scan invocation end to end: resolve the
// watchlist, fetch quotes through the fallback chain, pre-filter,
// evaluate, score, then rank and package the result. Per-symbol work
// is independent; one symbol's failure never aborts the scan.
package scan

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swingscan/swingscan/internal/catalyst"
	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
	"github.com/swingscan/swingscan/internal/metrics"
	"github.com/swingscan/swingscan/internal/providers"
	"github.com/swingscan/swingscan/internal/scoring"
	"github.com/swingscan/swingscan/internal/watchlist"
)

// QuoteFetcher is the fallback chain capability the orchestrator
// consumes.
type QuoteFetcher interface {
	Fetch(ctx context.Context, sym domain.Symbol) (*domain.Quote, error)
}

// SnapshotFunc supplies the macro regime snapshot for scan metadata.
type SnapshotFunc func(ctx context.Context) domain.MarketSnapshot

// Stage names one phase of the invocation state machine.
type Stage string

const (
	StageInit       Stage = "INIT"
	StageResolving  Stage = "RESOLVING"
	StageFetching   Stage = "FETCHING"
	StageEvaluating Stage = "EVALUATING"
	StageScoring    Stage = "SCORING"
	StageRanked     Stage = "RANKED"
	StageDone       Stage = "DONE"
)

// Orchestrator wires the collaborators for one scan. All state is
// per-invocation; an Orchestrator is safe to reuse sequentially.
type Orchestrator struct {
	cfg       *config.Config
	fetcher   QuoteFetcher
	catalysts catalyst.Source
	resolver  *watchlist.Resolver
	evaluator *scoring.Evaluator
	scorer    *scoring.Scorer
	snapshot  SnapshotFunc
	now       func() time.Time
	log       zerolog.Logger
}

type Option func(*Orchestrator)

// WithSnapshot attaches a macro regime snapshot source.
func WithSnapshot(fn SnapshotFunc) Option {
	return func(o *Orchestrator) { o.snapshot = fn }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(cfg *config.Config, fetcher QuoteFetcher, catalysts catalyst.Source, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		fetcher:   fetcher,
		catalysts: catalysts,
		resolver:  watchlist.NewResolver(cfg.Watchlist, log),
		evaluator: scoring.NewEvaluator(cfg.Scoring, cfg.Trading),
		scorer:    scoring.NewScorer(cfg.Scoring, cfg.Trading),
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// symbolOutcome is the result of processing one symbol. Exactly one
// of score, excluded, failure is set.
type symbolOutcome struct {
	score    *domain.OpportunityScore
	excluded *domain.SymbolFailure
	failure  *domain.SymbolFailure
	source   string
	symbol   string
}

// Options select the universe for one invocation.
type Options struct {
	// Override is the custom comma-separated watchlist; HasOverride
	// distinguishes an explicitly empty list from no override at all.
	Override    string
	HasOverride bool
	Market      domain.Market
}

// Run executes one scan. An empty resolved watchlist yields a valid
// empty result, not an error. On context timeout the symbols
// processed so far are still ranked and returned.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*domain.ScanResult, error) {
	started := o.now()
	defer func() {
		metrics.ScanDuration.Observe(o.now().Sub(started).Seconds())
	}()

	result := &domain.ScanResult{
		ScanID:    uuid.NewString(),
		Market:    opts.Market,
		Timestamp: started.UTC(),
		Sources:   make(map[string]string),
	}

	o.logStage(StageInit, result.ScanID)

	if o.cfg.Scan.Timeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Scan.Timeout())
		defer cancel()
	}

	if o.snapshot != nil {
		result.Snapshot = o.snapshot(ctx)
		o.log.Info().Str("regime", string(result.Snapshot.Regime)).Msg("market snapshot")
	} else {
		result.Snapshot.Regime = domain.RegimeUnknown
	}

	o.logStage(StageResolving, result.ScanID)
	symbols := o.resolver.Resolve(opts.Override, opts.HasOverride, opts.Market)
	result.TotalScanned = len(symbols)
	if len(symbols) == 0 {
		o.log.Info().Msg("watchlist resolved empty, nothing to scan")
		result.Status = domain.StatusNoOpportunities
		o.logStage(StageDone, result.ScanID)
		return result, nil
	}

	o.logStage(StageFetching, result.ScanID)
	outcomes := o.processAll(ctx, result.ScanID, symbols)

	o.logStage(StageRanked, result.ScanID)
	o.rank(result, outcomes)

	result.Status = domain.StatusOK
	if !result.HasOpportunities() {
		result.Status = domain.StatusNoOpportunities
	}

	o.logStage(StageDone, result.ScanID)
	o.log.Info().
		Int("scanned", result.TotalScanned).
		Int("opportunities", len(result.Opportunities)).
		Int("watchlist", len(result.Watch)).
		Int("failures", len(result.Failures)).
		Str("status", string(result.Status)).
		Msg("scan complete")
	return result, nil
}

// processAll runs the per-symbol pipeline through a bounded worker
// pool. Outcomes land in a slice indexed by the symbol's watchlist
// position so ranking input is deterministic regardless of completion
// order.
func (o *Orchestrator) processAll(ctx context.Context, scanID string, symbols []domain.Symbol) []symbolOutcome {
	outcomes := make([]symbolOutcome, len(symbols))

	workers := o.cfg.Scan.Concurrency
	if workers > len(symbols) {
		workers = len(symbols)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = o.processSymbol(ctx, scanID, symbols[idx])
			}
		}()
	}

feed:
	for i := range symbols {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Invocation timeout: stop feeding, keep what finished.
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Symbols never fed record a timeout failure.
	for i := range outcomes {
		if outcomes[i].symbol == "" {
			outcomes[i] = symbolOutcome{
				symbol: symbols[i].Ticker,
				failure: &domain.SymbolFailure{
					Symbol: symbols[i].Ticker,
					Reason: "scan timeout before fetch",
				},
			}
		}
	}
	return outcomes
}

func (o *Orchestrator) processSymbol(ctx context.Context, scanID string, sym domain.Symbol) symbolOutcome {
	out := symbolOutcome{symbol: sym.Ticker}
	metrics.SymbolsScanned.Inc()

	quote, err := o.fetcher.Fetch(ctx, sym)
	if err != nil {
		fail := &domain.SymbolFailure{Symbol: sym.Ticker, Reason: "data unavailable"}
		var unavail *providers.DataUnavailableError
		if errors.As(err, &unavail) {
			fail.Sources = unavail.Attempts
		} else {
			fail.Reason = err.Error()
		}
		out.failure = fail
		return out
	}
	out.source = quote.Source

	if reason, ok := scoring.CheckEligibility(quote, o.cfg.Filters); !ok {
		o.log.Debug().Str("symbol", sym.Ticker).Str("reason", reason).Msg("excluded by pre-filter")
		out.excluded = &domain.SymbolFailure{Symbol: sym.Ticker, Reason: reason}
		return out
	}

	o.logStage(StageEvaluating, scanID)
	cat := o.catalysts.Lookup(sym.Ticker)
	dims := o.evaluator.Evaluate(quote, cat)

	o.logStage(StageScoring, scanID)
	score := o.scorer.Score(sym, dims, quote)

	o.log.Info().
		Str("symbol", sym.Ticker).
		Int("composite", score.Composite).
		Str("decision", string(score.Decision)).
		Str("source", quote.Source).
		Msg("symbol scored")

	out.score = &score
	return out
}

// rank sorts survivors and fills the result lists. The ordering is
// total, so output is stable across runs.
func (o *Orchestrator) rank(result *domain.ScanResult, outcomes []symbolOutcome) {
	var scored []domain.OpportunityScore
	for _, out := range outcomes {
		switch {
		case out.failure != nil:
			result.Failures = append(result.Failures, *out.failure)
		case out.excluded != nil:
			result.Excluded = append(result.Excluded, *out.excluded)
		case out.score != nil:
			scored = append(scored, *out.score)
			result.Sources[out.symbol] = out.source
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Less(scored[j]) })

	for _, s := range scored {
		switch s.Decision {
		case domain.DecisionBuy:
			if len(result.Opportunities) < o.cfg.Scan.TopN {
				result.Opportunities = append(result.Opportunities, s)
				metrics.OpportunitiesFound.Inc()
			}
		case domain.DecisionWatchlist:
			if len(result.Watch) < o.cfg.Scan.WatchlistTopN {
				result.Watch = append(result.Watch, s)
			}
		}
	}
}

func (o *Orchestrator) logStage(stage Stage, scanID string) {
	o.log.Debug().Str("scan_id", scanID).Str("stage", string(stage)).Msg("stage")
}
