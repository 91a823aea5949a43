// Package watchlist expands the default or override symbol list into
// the concrete tickers a scan will process.
package watchlist

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
)

// Resolver turns an optional comma-separated override into an ordered,
// deduplicated symbol set. The default universe comes from read-only
// configuration so tests can inject arbitrary lists.
type Resolver struct {
	cfg config.WatchlistConfig
	eu  map[string]struct{}
	log zerolog.Logger
}

func NewResolver(cfg config.WatchlistConfig, log zerolog.Logger) *Resolver {
	eu := make(map[string]struct{}, len(cfg.EU))
	for _, t := range cfg.EU {
		eu[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	return &Resolver{cfg: cfg, eu: eu, log: log}
}

// Resolve returns the symbols to scan for a market. hasOverride marks
// that a custom list was explicitly supplied: an explicitly supplied
// list that is empty after trimming yields an empty set, which is a
// valid quiet-market outcome, not a fallthrough to the default
// universe and not an error. Each symbol carries its true venue tag:
// default-list tickers are tagged by the list they come from, never by
// the requested market.
func (r *Resolver) Resolve(override string, hasOverride bool, market domain.Market) []domain.Symbol {
	if hasOverride {
		return r.parseOverride(override, market)
	}

	var symbols []domain.Symbol
	switch market {
	case domain.MarketEU:
		symbols = tagged(r.cfg.EU, domain.MarketEU)
	case domain.MarketUS:
		symbols = tagged(r.cfg.US, domain.MarketUS)
	default:
		symbols = append(tagged(r.cfg.US, domain.MarketUS), tagged(r.cfg.EU, domain.MarketEU)...)
	}
	return dedupe(symbols)
}

func (r *Resolver) parseOverride(override string, market domain.Market) []domain.Symbol {
	tokens := strings.Split(override, ",")
	symbols := make([]domain.Symbol, 0, len(tokens))
	for _, tok := range tokens {
		t := strings.TrimSpace(tok)
		if t == "" {
			continue
		}
		if strings.ContainsAny(t, " \t") {
			r.log.Warn().Str("token", tok).Msg("dropping invalid watchlist token")
			continue
		}
		symbols = append(symbols, domain.NewSymbol(t, r.venueFor(t, market)))
	}
	return dedupe(symbols)
}

// venueFor picks the venue tag for an override ticker. A concrete
// requested market wins; for the combined universe the known EU list
// decides, defaulting to US.
func (r *Resolver) venueFor(ticker string, market domain.Market) domain.Market {
	if market == domain.MarketUS || market == domain.MarketEU {
		return market
	}
	if _, ok := r.eu[strings.ToUpper(strings.TrimSpace(ticker))]; ok {
		return domain.MarketEU
	}
	return domain.MarketUS
}

func tagged(tickers []string, venue domain.Market) []domain.Symbol {
	out := make([]domain.Symbol, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, domain.NewSymbol(t, venue))
	}
	return out
}

// dedupe removes duplicate tickers, preserving first-seen order and
// the first-seen venue tag.
func dedupe(symbols []domain.Symbol) []domain.Symbol {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]domain.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		if sym.Ticker == "" {
			continue
		}
		if _, ok := seen[sym.Ticker]; ok {
			continue
		}
		seen[sym.Ticker] = struct{}{}
		out = append(out, sym)
	}
	return out
}
