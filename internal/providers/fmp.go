package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/swingscan/swingscan/internal/domain"
)

const fmpBaseURL = "https://financialmodelingprep.com"

// FMP fetches quotes from Financial Modeling Prep. Requires an API key
// passed as the `apikey` query parameter.
type FMP struct {
	baseURL string
	apiKey  string
	http    httpDoer
	now     func() time.Time
}

func NewFMP(apiKey string, timeout time.Duration) *FMP {
	return &FMP{baseURL: fmpBaseURL, apiKey: apiKey, http: newHTTPClient(timeout), now: time.Now}
}

func (f *FMP) Name() string { return "fmp" }

type fmpQuote struct {
	Price         float64  `json:"price"`
	PreviousClose float64  `json:"previousClose"`
	Volume        *float64 `json:"volume"`
	AvgVolume     *float64 `json:"avgVolume"`
	MarketCap     *float64 `json:"marketCap"`
	YearHigh      *float64 `json:"yearHigh"`
	YearLow       *float64 `json:"yearLow"`
}

type fmpProfile struct {
	Beta *float64 `json:"beta"`
}

func (f *FMP) FetchQuote(ctx context.Context, sym domain.Symbol) (*domain.Quote, error) {
	u := fmt.Sprintf("%s/api/v3/quote/%s?apikey=%s", f.baseURL, url.PathEscape(sym.Ticker), url.QueryEscape(f.apiKey))

	var quotes []fmpQuote
	if err := getJSON(ctx, f.http, f.Name(), sym.Ticker, u, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 || quotes[0].Price <= 0 {
		return nil, &ProviderError{
			Provider: f.Name(), Symbol: sym.Ticker, Kind: FailurePermanent,
			Err: fmt.Errorf("malformed payload: missing price"),
		}
	}

	fq := quotes[0]
	q := &domain.Quote{
		Symbol:    sym.Ticker,
		Market:    sym.Market,
		Price:     fq.Price,
		PrevClose: fq.PreviousClose,
		Volume:    fq.Volume,
		AvgVolume: fq.AvgVolume,
		MarketCap: fq.MarketCap,
		High52W:   fq.YearHigh,
		Low52W:    fq.YearLow,
		Timestamp: f.now().UTC(),
		Source:    f.Name(),
	}
	if fq.PreviousClose > 0 {
		q.ChangePct = (fq.Price - fq.PreviousClose) / fq.PreviousClose * 100
	}

	// Beta lives on the profile endpoint; best effort.
	pu := fmt.Sprintf("%s/api/v3/profile/%s?apikey=%s", f.baseURL, url.PathEscape(sym.Ticker), url.QueryEscape(f.apiKey))
	var profiles []fmpProfile
	if err := getJSON(ctx, f.http, f.Name(), sym.Ticker, pu, &profiles); err == nil && len(profiles) > 0 {
		q.Beta = profiles[0].Beta
	}

	return q, nil
}
