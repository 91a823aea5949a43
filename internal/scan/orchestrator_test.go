package scan

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
	"github.com/swingscan/swingscan/internal/providers"
)

func fptr(v float64) *float64 { return &v }

// mapFetcher serves canned quotes or errors per ticker.
type mapFetcher struct {
	quotes map[string]*domain.Quote
	errs   map[string]error
}

func (m *mapFetcher) Fetch(_ context.Context, sym domain.Symbol) (*domain.Quote, error) {
	if err, ok := m.errs[sym.Ticker]; ok {
		return nil, err
	}
	if q, ok := m.quotes[sym.Ticker]; ok {
		return q, nil
	}
	return nil, &providers.DataUnavailableError{
		Symbol:   sym.Ticker,
		Attempts: []domain.SourceFailure{{Provider: "yahoo", Reason: "no data"}},
	}
}

// mapCatalysts is a fixed symbol -> context table.
type mapCatalysts map[string]domain.CatalystContext

func (m mapCatalysts) Lookup(symbol string) *domain.CatalystContext {
	if c, ok := m[symbol]; ok {
		return &c
	}
	return nil
}

// strongQuote is shaped to score [5,4,5,3,4] with a dated catalyst:
// breakout range position, elevated volume, momentum that pushes the
// target to 20% against a 6% stop.
func strongQuote(ticker string) *domain.Quote {
	return &domain.Quote{
		Symbol:    ticker,
		Market:    domain.MarketUS,
		Price:     120,
		PrevClose: 116.5,
		ChangePct: 3.0,
		Volume:    fptr(2_600_000),
		AvgVolume: fptr(2_000_000),
		MarketCap: fptr(50e9),
		High52W:   fptr(130),
		Low52W:    fptr(30),
		Timestamp: time.Now().UTC(),
		Source:    "yahoo",
	}
}

// testConfig narrows the ratio buckets so a 3.33 risk/reward earns the
// top bucket.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Scoring.RiskRewardBuckets = []float64{3.3, 3.0, 2.0, 1.5}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRun_StrongCandidateBecomesBuy(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &mapFetcher{quotes: map[string]*domain.Quote{"NVDA": strongQuote("NVDA")}}
	catalysts := mapCatalysts{
		"NVDA": {EventType: "earnings", DaysToEvent: 6, Confidence: 0.6},
	}

	orch := NewOrchestrator(cfg, fetcher, catalysts, zerolog.Nop())
	result, err := orch.Run(context.Background(), Options{Override: "NVDA", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, result.Status)
	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, 1, result.TotalScanned)
	require.Len(t, result.Opportunities, 1)

	opp := result.Opportunities[0]
	assert.Equal(t, "NVDA", opp.Symbol.Ticker)
	assert.Equal(t, domain.Dimensions{5, 4, 5, 3, 4}, opp.Dimensions)
	assert.Equal(t, 84, opp.Composite)
	assert.Equal(t, domain.DecisionBuy, opp.Decision)
	assert.Equal(t, "yahoo", result.Sources["NVDA"])
	assert.True(t, result.HasOpportunities())
}

func TestRun_PreFilterExcludesBeforeScoring(t *testing.T) {
	cfg := testConfig(t)
	tooExpensive := strongQuote("AMD")
	tooExpensive.Price = 620
	fetcher := &mapFetcher{quotes: map[string]*domain.Quote{
		"NVDA": strongQuote("NVDA"),
		"AMD":  tooExpensive,
	}}

	orch := NewOrchestrator(cfg, fetcher, mapCatalysts{}, zerolog.Nop())
	result, err := orch.Run(context.Background(), Options{Override: "NVDA,AMD", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalScanned)
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, "AMD", result.Excluded[0].Symbol)
	assert.Contains(t, result.Excluded[0].Reason, "price")
	assert.NotContains(t, result.Sources, "AMD", "excluded symbols never reach scoring")
}

func TestRun_DataFailureCarriesProviderReasons(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &mapFetcher{errs: map[string]error{
		"DEAD": &providers.DataUnavailableError{
			Symbol: "DEAD",
			Attempts: []domain.SourceFailure{
				{Provider: "yahoo", Reason: "http 500"},
				{Provider: "finnhub", Reason: "http 401"},
				{Provider: "fmp", Reason: "malformed payload"},
			},
		},
	}}

	orch := NewOrchestrator(cfg, fetcher, mapCatalysts{}, zerolog.Nop())
	result, err := orch.Run(context.Background(), Options{Override: "DEAD", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err, "one symbol failing must not fail the scan")

	assert.Equal(t, domain.StatusNoOpportunities, result.Status)
	require.Len(t, result.Failures, 1)
	fail := result.Failures[0]
	assert.Equal(t, "DEAD", fail.Symbol)
	assert.Equal(t, "data unavailable", fail.Reason)
	require.Len(t, fail.Sources, 3)
	assert.Equal(t, "finnhub", fail.Sources[1].Provider)
	assert.Equal(t, "http 401", fail.Sources[1].Reason)
}

func TestRun_ExplicitEmptyOverride(t *testing.T) {
	cfg := testConfig(t)
	orch := NewOrchestrator(cfg, &mapFetcher{}, mapCatalysts{}, zerolog.Nop())

	result, err := orch.Run(context.Background(), Options{Override: "", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNoOpportunities, result.Status)
	assert.Zero(t, result.TotalScanned)
	assert.Empty(t, result.Opportunities)
	assert.Empty(t, result.Failures)
}

func TestRun_RankingIsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &mapFetcher{quotes: map[string]*domain.Quote{
		"BBB": strongQuote("BBB"),
		"AAA": strongQuote("AAA"),
		"CCC": strongQuote("CCC"),
	}}
	catalysts := mapCatalysts{
		"AAA": {EventType: "earnings", DaysToEvent: 6, Confidence: 0.6},
		"BBB": {EventType: "earnings", DaysToEvent: 6, Confidence: 0.6},
		"CCC": {EventType: "earnings", DaysToEvent: 6, Confidence: 0.6},
	}

	orch := NewOrchestrator(cfg, fetcher, catalysts, zerolog.Nop())
	for i := 0; i < 5; i++ {
		result, err := orch.Run(context.Background(), Options{Override: "BBB,CCC,AAA", HasOverride: true, Market: domain.MarketUS})
		require.NoError(t, err)
		require.Len(t, result.Opportunities, 3)
		assert.Equal(t, "AAA", result.Opportunities[0].Symbol.Ticker, "equal scores break ties by ticker")
		assert.Equal(t, "BBB", result.Opportunities[1].Symbol.Ticker)
		assert.Equal(t, "CCC", result.Opportunities[2].Symbol.Ticker)
	}
}

func TestRun_TopNCapsOpportunities(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan.TopN = 2

	quotes := make(map[string]*domain.Quote)
	catalysts := mapCatalysts{}
	override := ""
	for _, ticker := range []string{"AAA", "BBB", "CCC", "DDD"} {
		quotes[ticker] = strongQuote(ticker)
		catalysts[ticker] = domain.CatalystContext{EventType: "earnings", DaysToEvent: 6, Confidence: 0.6}
		if override != "" {
			override += ","
		}
		override += ticker
	}

	orch := NewOrchestrator(cfg, &mapFetcher{quotes: quotes}, catalysts, zerolog.Nop())
	result, err := orch.Run(context.Background(), Options{Override: override, HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 2)
	assert.Equal(t, "AAA", result.Opportunities[0].Symbol.Ticker)
	assert.Equal(t, "BBB", result.Opportunities[1].Symbol.Ticker)
}

func TestRun_WatchlistBucket(t *testing.T) {
	cfg := testConfig(t)
	// A far-dated, low-confidence catalyst scores [2,4,5,3,3]:
	// composite 68, past the watch bar but short of BUY.
	fetcher := &mapFetcher{quotes: map[string]*domain.Quote{"CRM": strongQuote("CRM")}}
	catalysts := mapCatalysts{
		"CRM": {EventType: "earnings", DaysToEvent: 28, Confidence: 0.45},
	}

	orch := NewOrchestrator(cfg, fetcher, catalysts, zerolog.Nop())
	result, err := orch.Run(context.Background(), Options{Override: "CRM", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)

	assert.Empty(t, result.Opportunities)
	require.Len(t, result.Watch, 1)
	assert.Equal(t, domain.DecisionWatchlist, result.Watch[0].Decision)
	assert.Equal(t, domain.StatusNoOpportunities, result.Status, "watch entries alone do not flip the status")
}

func TestRun_SnapshotAttached(t *testing.T) {
	cfg := testConfig(t)
	snap := domain.MarketSnapshot{VIX: fptr(14.2), SP500Change: fptr(0.7), Regime: domain.RegimeRiskOn}

	orch := NewOrchestrator(cfg, &mapFetcher{}, mapCatalysts{}, zerolog.Nop(),
		WithSnapshot(func(context.Context) domain.MarketSnapshot { return snap }))
	result, err := orch.Run(context.Background(), Options{Override: "", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)
	assert.Equal(t, domain.RegimeRiskOn, result.Snapshot.Regime)

	orch = NewOrchestrator(cfg, &mapFetcher{}, mapCatalysts{}, zerolog.Nop())
	result, err = orch.Run(context.Background(), Options{Override: "", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)
	assert.Equal(t, domain.RegimeUnknown, result.Snapshot.Regime, "no snapshot source defaults to unknown")
}

// blockingFetcher answers known tickers immediately and parks every
// other fetch until the scan context expires.
type blockingFetcher struct {
	quotes map[string]*domain.Quote
}

func (f *blockingFetcher) Fetch(ctx context.Context, sym domain.Symbol) (*domain.Quote, error) {
	if q, ok := f.quotes[sym.Ticker]; ok {
		return q, nil
	}
	<-ctx.Done()
	// Hold the worker briefly past the deadline so the feeder always
	// observes the expired context before the worker frees up.
	time.Sleep(50 * time.Millisecond)
	return nil, ctx.Err()
}

func TestRun_TimeoutRanksPartialResults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan.Concurrency = 1
	cfg.Scan.TimeoutSeconds = 1

	// With one worker: GOOD completes, SLOW parks until the scan
	// deadline, NEVER is never fed because the worker is still stuck
	// when the deadline hits.
	fetcher := &blockingFetcher{quotes: map[string]*domain.Quote{"GOOD": strongQuote("GOOD")}}
	catalysts := mapCatalysts{
		"GOOD": {EventType: "earnings", DaysToEvent: 6, Confidence: 0.6},
	}

	orch := NewOrchestrator(cfg, fetcher, catalysts, zerolog.Nop())
	result, err := orch.Run(context.Background(), Options{Override: "GOOD,SLOW,NEVER", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err, "timeout yields a partial result, not an error")

	require.Len(t, result.Opportunities, 1, "completed symbols are still ranked")
	assert.Equal(t, "GOOD", result.Opportunities[0].Symbol.Ticker)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "SLOW", result.Failures[0].Symbol)
	assert.Contains(t, result.Failures[0].Reason, "context deadline exceeded")
	assert.Equal(t, "NEVER", result.Failures[1].Symbol)
	assert.Equal(t, "scan timeout before fetch", result.Failures[1].Reason)
}

func TestRun_LogsEveryStage(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	fetcher := &mapFetcher{quotes: map[string]*domain.Quote{"NVDA": strongQuote("NVDA")}}
	orch := NewOrchestrator(cfg, fetcher, mapCatalysts{}, logger)
	_, err := orch.Run(context.Background(), Options{Override: "NVDA", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)

	logs := buf.String()
	for _, stage := range []Stage{StageInit, StageResolving, StageFetching, StageEvaluating, StageScoring, StageRanked, StageDone} {
		assert.Contains(t, logs, string(stage))
	}
}

func TestRun_ClockInjection(t *testing.T) {
	cfg := testConfig(t)
	fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	orch := NewOrchestrator(cfg, &mapFetcher{}, mapCatalysts{}, zerolog.Nop(),
		WithClock(func() time.Time { return fixed }))
	result, err := orch.Run(context.Background(), Options{Override: "", HasOverride: true, Market: domain.MarketUS})
	require.NoError(t, err)
	assert.Equal(t, fixed, result.Timestamp)
}
