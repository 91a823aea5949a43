// Package catalyst maps symbols to upcoming scheduled events. The
// current source is the earnings calendar; absence of a context for a
// symbol is a valid state that scores at the documented floors.
package catalyst

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/swingscan/swingscan/internal/domain"
	"github.com/swingscan/swingscan/internal/providers"
)

// Source looks up the catalyst context for a symbol. Lookup returns
// nil when no event is known, which callers must treat as valid.
type Source interface {
	Lookup(symbol string) *domain.CatalystContext
}

// Empty is the no-catalyst source used when no calendar credential is
// configured.
type Empty struct{}

func (Empty) Lookup(string) *domain.CatalystContext { return nil }

// CalendarFetcher is the slice of the Finnhub client the calendar
// needs.
type CalendarFetcher interface {
	FetchEarningsCalendar(ctx context.Context, from, to string) ([]providers.EarningsEntry, error)
}

// Calendar is an immutable symbol -> context map loaded once per scan.
type Calendar struct {
	entries map[string]domain.CatalystContext
}

// LoadCalendar fetches the earnings calendar for the next daysAhead
// days and indexes it by symbol. A fetch failure degrades to an empty
// calendar rather than failing the scan.
func LoadCalendar(ctx context.Context, fetcher CalendarFetcher, now time.Time, daysAhead int, log zerolog.Logger) *Calendar {
	cal := &Calendar{entries: make(map[string]domain.CatalystContext)}

	from := now.Format("2006-01-02")
	to := now.AddDate(0, 0, daysAhead).Format("2006-01-02")
	rows, err := fetcher.FetchEarningsCalendar(ctx, from, to)
	if err != nil {
		log.Warn().Err(err).Msg("earnings calendar unavailable, scanning without catalysts")
		return cal
	}

	for _, row := range rows {
		if row.Symbol == "" || row.Date == "" {
			continue
		}
		eventDate, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			continue
		}
		days := int(eventDate.Sub(now).Hours() / 24)
		if days < 0 {
			days = 0
		}
		cal.entries[row.Symbol] = domain.CatalystContext{
			EventType:   "earnings",
			DaysToEvent: days,
			Confidence:  confidence(row),
		}
	}

	log.Info().Int("events", len(cal.entries)).Str("from", from).Str("to", to).
		Msg("earnings calendar loaded")
	return cal
}

// confidence grades an entry by estimate coverage: both EPS and
// revenue estimates mean analysts are watching closely.
func confidence(row providers.EarningsEntry) float64 {
	switch {
	case row.EPSEstimate != nil && row.RevenueEstimate != nil:
		return 0.8
	case row.EPSEstimate != nil || row.RevenueEstimate != nil:
		return 0.6
	default:
		return 0.4
	}
}

func (c *Calendar) Lookup(symbol string) *domain.CatalystContext {
	if ctx, ok := c.entries[symbol]; ok {
		out := ctx
		return &out
	}
	return nil
}

// Len reports how many symbols have a known event.
func (c *Calendar) Len() int { return len(c.entries) }
