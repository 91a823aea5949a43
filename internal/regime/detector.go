// Package regime classifies the broad market session from macro
// proxies. The regime is advisory context attached to scan metadata;
// it never feeds the per-symbol dimension scores.
package regime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/swingscan/swingscan/internal/domain"
)

// Index proxies fetched before each scan.
const (
	SymbolVIX    = "^VIX"
	SymbolSP500  = "SPY"
	SymbolNasdaq = "^IXIC"
)

// QuoteFetcher is the slice of the fallback chain the detector uses.
type QuoteFetcher interface {
	Fetch(ctx context.Context, sym domain.Symbol) (*domain.Quote, error)
}

// Snapshot fetches the macro proxies and classifies the session. Any
// individual fetch failure leaves that field nil and degrades the
// classification, never the scan.
func Snapshot(ctx context.Context, fetcher QuoteFetcher, log zerolog.Logger) domain.MarketSnapshot {
	snap := domain.MarketSnapshot{}

	if q, err := fetcher.Fetch(ctx, domain.NewSymbol(SymbolVIX, domain.MarketUS)); err == nil {
		v := q.Price
		snap.VIX = &v
	} else {
		log.Warn().Err(err).Msg("VIX unavailable")
	}
	if q, err := fetcher.Fetch(ctx, domain.NewSymbol(SymbolSP500, domain.MarketUS)); err == nil {
		c := q.ChangePct
		snap.SP500Change = &c
	}
	if q, err := fetcher.Fetch(ctx, domain.NewSymbol(SymbolNasdaq, domain.MarketUS)); err == nil {
		c := q.ChangePct
		snap.NasdaqChange = &c
	}

	snap.Regime = Classify(snap)
	return snap
}

// Classify maps VIX level and index direction onto a regime. Without
// VIX data the regime is unknown, which downstream treats as neutral.
func Classify(snap domain.MarketSnapshot) domain.Regime {
	if snap.VIX == nil {
		return domain.RegimeUnknown
	}
	vix := *snap.VIX
	spxUp := snap.SP500Change != nil && *snap.SP500Change > 0

	switch {
	case vix > 25:
		return domain.RegimeRiskOff
	case vix < 18 && spxUp:
		return domain.RegimeRiskOn
	default:
		return domain.RegimeNeutral
	}
}
