package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
)

func TestComposite_Rescaling(t *testing.T) {
	cases := []struct {
		dims domain.Dimensions
		want int
	}{
		{domain.Dimensions{1, 1, 1, 1, 1}, 20},
		{domain.Dimensions{5, 5, 5, 5, 5}, 100},
		{domain.Dimensions{5, 4, 5, 3, 4}, 84},
		{domain.Dimensions{3, 3, 3, 3, 3}, 60},
		{domain.Dimensions{4, 4, 4, 4, 3}, 76},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Composite(tc.dims), "dims=%v", tc.dims)
	}
}

func TestComposite_RangeIsBounded(t *testing.T) {
	// Every valid dimension combination must land in [20,100].
	for sum := 5; sum <= 25; sum++ {
		dims := domain.Dimensions{1, 1, 1, 1, sum - 4}
		c := Composite(dims)
		assert.GreaterOrEqual(t, c, 20)
		assert.LessOrEqual(t, c, 100)
	}
}

func TestScore_DecisionThresholds(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg.Scoring, cfg.Trading)
	sym := domain.NewSymbol("TEST", domain.MarketUS)

	// Quote shaped so the derived ratio (3.33) clears the risk guard.
	q := baseQuote()
	q.ChangePct = 3

	buy := s.Score(sym, domain.Dimensions{5, 4, 5, 3, 4}, q) // composite 84
	assert.Equal(t, domain.DecisionBuy, buy.Decision)

	watch := s.Score(sym, domain.Dimensions{4, 3, 4, 3, 3}, q) // composite 68
	assert.Equal(t, domain.DecisionWatchlist, watch.Decision)

	skip := s.Score(sym, domain.Dimensions{2, 2, 3, 3, 2}, q) // composite 48
	assert.Equal(t, domain.DecisionSkip, skip.Decision)
}

func TestScore_RiskGuardOverridesComposite(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg.Scoring, cfg.Trading)
	sym := domain.NewSymbol("TEST", domain.MarketUS)

	// High beta widens the stop to 10%; flat tape keeps the 15%
	// target. Ratio 1.5 is under the 3.0 minimum, so even a perfect
	// composite must not produce a BUY.
	q := baseQuote()
	q.Beta = fptr(2.5)

	score := s.Score(sym, domain.Dimensions{5, 5, 5, 5, 5}, q)
	assert.Equal(t, 100, score.Composite)
	assert.Equal(t, domain.DecisionSkip, score.Decision, "risk policy overrides raw score")
	assert.Less(t, score.Risk.RiskRewardRatio, cfg.Trading.MinRiskReward)
}

func TestScore_CarriesQuoteAndRiskParams(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg.Scoring, cfg.Trading)
	sym := domain.NewSymbol("TEST", domain.MarketUS)
	q := baseQuote()

	score := s.Score(sym, domain.Dimensions{3, 3, 3, 3, 3}, q)
	assert.Same(t, q, score.Quote)
	assert.Equal(t, sym, score.Symbol)
	assert.Positive(t, score.Risk.EntryPrice)
	assert.Equal(t, cfg.Trading.MaxConcurrentPositions, score.Risk.MaxConcurrentPositions)
}
