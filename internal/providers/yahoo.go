package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/swingscan/swingscan/internal/domain"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo fetches quotes from the public Yahoo Finance quoteSummary
// endpoint. It needs no API key, which makes it the primary provider.
type Yahoo struct {
	baseURL string
	http    httpDoer
	now     func() time.Time
}

func NewYahoo(timeout time.Duration) *Yahoo {
	return &Yahoo{baseURL: yahooBaseURL, http: newHTTPClient(timeout), now: time.Now}
}

func (y *Yahoo) Name() string { return "yahoo" }

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} number wrapper.
// Absent fields decode to a nil Raw.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice         rawValue `json:"regularMarketPrice"`
				RegularMarketPreviousClose rawValue `json:"regularMarketPreviousClose"`
				RegularMarketVolume        rawValue `json:"regularMarketVolume"`
			} `json:"price"`
			SummaryDetail struct {
				MarketCap        rawValue `json:"marketCap"`
				Beta             rawValue `json:"beta"`
				AverageVolume    rawValue `json:"averageVolume"`
				FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			FinancialData struct {
				RevenueGrowth rawValue `json:"revenueGrowth"`
				ProfitMargins rawValue `json:"profitMargins"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (y *Yahoo) FetchQuote(ctx context.Context, sym domain.Symbol) (*domain.Quote, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL,
		url.PathEscape(sym.Ticker),
		url.QueryEscape("price,summaryDetail,financialData"))

	var resp yahooSummaryResponse
	if err := getJSON(ctx, y.http, y.Name(), sym.Ticker, u, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, &ProviderError{
			Provider: y.Name(), Symbol: sym.Ticker, Kind: FailurePermanent,
			Err: fmt.Errorf("api error %s: %s", resp.QuoteSummary.Error.Code, resp.QuoteSummary.Error.Description),
		}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &ProviderError{
			Provider: y.Name(), Symbol: sym.Ticker, Kind: FailurePermanent,
			Err: fmt.Errorf("malformed payload: empty result"),
		}
	}

	r := resp.QuoteSummary.Result[0]
	price := r.Price.RegularMarketPrice.Raw
	if price == nil || *price <= 0 {
		return nil, &ProviderError{
			Provider: y.Name(), Symbol: sym.Ticker, Kind: FailurePermanent,
			Err: fmt.Errorf("malformed payload: missing price"),
		}
	}

	q := &domain.Quote{
		Symbol:        sym.Ticker,
		Market:        sym.Market,
		Price:         *price,
		Volume:        r.Price.RegularMarketVolume.Raw,
		AvgVolume:     r.SummaryDetail.AverageVolume.Raw,
		MarketCap:     r.SummaryDetail.MarketCap.Raw,
		Beta:          r.SummaryDetail.Beta.Raw,
		High52W:       r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		Low52W:        r.SummaryDetail.FiftyTwoWeekLow.Raw,
		RevenueGrowth: r.FinancialData.RevenueGrowth.Raw,
		ProfitMargin:  r.FinancialData.ProfitMargins.Raw,
		Timestamp:     y.now().UTC(),
		Source:        y.Name(),
	}
	if pc := r.Price.RegularMarketPreviousClose.Raw; pc != nil && *pc > 0 {
		q.PrevClose = *pc
		q.ChangePct = (q.Price - *pc) / *pc * 100
	}
	return q, nil
}
