package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/swingscan/swingscan/internal/domain"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Finnhub fetches quote, profile and metric data. Requires an API key
// passed as the `token` query parameter.
type Finnhub struct {
	baseURL string
	apiKey  string
	http    httpDoer
	now     func() time.Time
}

func NewFinnhub(apiKey string, timeout time.Duration) *Finnhub {
	return &Finnhub{baseURL: finnhubBaseURL, apiKey: apiKey, http: newHTTPClient(timeout), now: time.Now}
}

func (f *Finnhub) Name() string { return "finnhub" }

type finnhubQuote struct {
	Current   float64 `json:"c"`
	PrevClose float64 `json:"pc"`
}

type finnhubProfile struct {
	// Finnhub reports market cap in millions of USD.
	MarketCapitalization *float64 `json:"marketCapitalization"`
	Beta                 *float64 `json:"beta"`
}

type finnhubMetrics struct {
	Metric struct {
		High52W       *float64 `json:"52WeekHigh"`
		Low52W        *float64 `json:"52WeekLow"`
		Beta          *float64 `json:"beta"`
		RevenueGrowth *float64 `json:"revenueGrowthTTMYoy"`   // percent
		ProfitMargin  *float64 `json:"netProfitMarginTTM"`    // percent
		AvgVolume10D  *float64 `json:"10DayAverageTradingVolume"` // millions of shares
	} `json:"metric"`
}

func (f *Finnhub) url(path, symbol string, extra url.Values) string {
	v := url.Values{}
	v.Set("symbol", symbol)
	v.Set("token", f.apiKey)
	for k, vals := range extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	return f.baseURL + path + "?" + v.Encode()
}

func (f *Finnhub) FetchQuote(ctx context.Context, sym domain.Symbol) (*domain.Quote, error) {
	var fq finnhubQuote
	if err := getJSON(ctx, f.http, f.Name(), sym.Ticker, f.url("/quote", sym.Ticker, nil), &fq); err != nil {
		return nil, err
	}
	if fq.Current <= 0 {
		return nil, &ProviderError{
			Provider: f.Name(), Symbol: sym.Ticker, Kind: FailurePermanent,
			Err: fmt.Errorf("malformed payload: missing price"),
		}
	}

	q := &domain.Quote{
		Symbol:    sym.Ticker,
		Market:    sym.Market,
		Price:     fq.Current,
		PrevClose: fq.PrevClose,
		Timestamp: f.now().UTC(),
		Source:    f.Name(),
	}
	if fq.PrevClose > 0 {
		q.ChangePct = (fq.Current - fq.PrevClose) / fq.PrevClose * 100
	}

	// Profile and metrics enrich the quote; their absence degrades
	// scoring but is not a fetch failure.
	var profile finnhubProfile
	if err := getJSON(ctx, f.http, f.Name(), sym.Ticker, f.url("/stock/profile2", sym.Ticker, nil), &profile); err == nil {
		if profile.MarketCapitalization != nil {
			mc := *profile.MarketCapitalization * 1e6
			q.MarketCap = &mc
		}
		q.Beta = profile.Beta
	}

	var metrics finnhubMetrics
	if err := getJSON(ctx, f.http, f.Name(), sym.Ticker, f.url("/stock/metric", sym.Ticker, url.Values{"metric": {"all"}}), &metrics); err == nil {
		m := metrics.Metric
		q.High52W = m.High52W
		q.Low52W = m.Low52W
		if q.Beta == nil {
			q.Beta = m.Beta
		}
		if m.RevenueGrowth != nil {
			g := *m.RevenueGrowth / 100
			q.RevenueGrowth = &g
		}
		if m.ProfitMargin != nil {
			p := *m.ProfitMargin / 100
			q.ProfitMargin = &p
		}
		if m.AvgVolume10D != nil {
			av := *m.AvgVolume10D * 1e6
			q.AvgVolume = &av
		}
	}

	return q, nil
}

// EarningsEntry is one row of the Finnhub earnings calendar.
type EarningsEntry struct {
	Symbol          string   `json:"symbol"`
	Date            string   `json:"date"` // YYYY-MM-DD
	EPSEstimate     *float64 `json:"epsEstimate"`
	RevenueEstimate *float64 `json:"revenueEstimate"`
}

type earningsCalendarResponse struct {
	EarningsCalendar []EarningsEntry `json:"earningsCalendar"`
}

// FetchEarningsCalendar returns scheduled earnings between from and to
// (inclusive), both formatted YYYY-MM-DD.
func (f *Finnhub) FetchEarningsCalendar(ctx context.Context, from, to string) ([]EarningsEntry, error) {
	v := url.Values{}
	v.Set("from", from)
	v.Set("to", to)
	v.Set("token", f.apiKey)
	u := f.baseURL + "/calendar/earnings?" + v.Encode()

	var resp earningsCalendarResponse
	if err := getJSON(ctx, f.http, f.Name(), "earnings-calendar", u, &resp); err != nil {
		return nil, err
	}
	return resp.EarningsCalendar, nil
}
