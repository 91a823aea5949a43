package regime

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swingscan/swingscan/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		snap domain.MarketSnapshot
		want domain.Regime
	}{
		{"no vix data", domain.MarketSnapshot{}, domain.RegimeUnknown},
		{"elevated vix", domain.MarketSnapshot{VIX: fptr(28)}, domain.RegimeRiskOff},
		{"calm vix and green tape", domain.MarketSnapshot{VIX: fptr(14), SP500Change: fptr(0.6)}, domain.RegimeRiskOn},
		{"calm vix but red tape", domain.MarketSnapshot{VIX: fptr(14), SP500Change: fptr(-0.4)}, domain.RegimeNeutral},
		{"calm vix without index data", domain.MarketSnapshot{VIX: fptr(14)}, domain.RegimeNeutral},
		{"middling vix", domain.MarketSnapshot{VIX: fptr(21), SP500Change: fptr(1.2)}, domain.RegimeNeutral},
		{"boundary vix 25 is not risk off", domain.MarketSnapshot{VIX: fptr(25)}, domain.RegimeNeutral},
		{"boundary vix 18 is not risk on", domain.MarketSnapshot{VIX: fptr(18), SP500Change: fptr(0.5)}, domain.RegimeNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.snap))
		})
	}
}

type stubQuotes struct {
	quotes map[string]*domain.Quote
}

func (s *stubQuotes) Fetch(_ context.Context, sym domain.Symbol) (*domain.Quote, error) {
	if q, ok := s.quotes[sym.Ticker]; ok {
		return q, nil
	}
	return nil, errors.New("no data")
}

func TestSnapshot_FetchesAllProxies(t *testing.T) {
	fetcher := &stubQuotes{quotes: map[string]*domain.Quote{
		SymbolVIX:    {Symbol: SymbolVIX, Price: 16.5},
		SymbolSP500:  {Symbol: SymbolSP500, Price: 580, ChangePct: 0.8},
		SymbolNasdaq: {Symbol: SymbolNasdaq, Price: 18200, ChangePct: 1.1},
	}}

	snap := Snapshot(context.Background(), fetcher, zerolog.Nop())
	require.NotNil(t, snap.VIX)
	assert.Equal(t, 16.5, *snap.VIX)
	require.NotNil(t, snap.SP500Change)
	assert.Equal(t, 0.8, *snap.SP500Change)
	require.NotNil(t, snap.NasdaqChange)
	assert.Equal(t, 1.1, *snap.NasdaqChange)
	assert.Equal(t, domain.RegimeRiskOn, snap.Regime)
}

func TestSnapshot_PartialFailureDegrades(t *testing.T) {
	fetcher := &stubQuotes{quotes: map[string]*domain.Quote{
		SymbolSP500: {Symbol: SymbolSP500, Price: 580, ChangePct: 0.8},
	}}

	snap := Snapshot(context.Background(), fetcher, zerolog.Nop())
	assert.Nil(t, snap.VIX)
	assert.Nil(t, snap.NasdaqChange)
	require.NotNil(t, snap.SP500Change)
	assert.Equal(t, domain.RegimeUnknown, snap.Regime, "no VIX means no regime call")
}
