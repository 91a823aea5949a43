package scoring

import (
	"math"

	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
)

// Composite rescales the dimension sum (5-25) onto 0-100, rounded to
// the nearest integer. Pure function of the five scores.
func Composite(d domain.Dimensions) int {
	return int(math.Round(float64(d.Sum()) / 25.0 * 100))
}

// Scorer aggregates dimension scores into an OpportunityScore.
type Scorer struct {
	scoring config.ScoringConfig
	trading config.TradingConfig
}

func NewScorer(scoring config.ScoringConfig, trading config.TradingConfig) *Scorer {
	return &Scorer{scoring: scoring, trading: trading}
}

// Score applies the fixed decision thresholds and the risk-policy
// guard: a composite past the BUY bar still ends as SKIP when the
// derived risk/reward ratio is below the configured minimum. Risk
// policy overrides raw score to keep strong-but-unsafe setups out of
// the BUY list.
func (s *Scorer) Score(sym domain.Symbol, dims domain.Dimensions, q *domain.Quote) domain.OpportunityScore {
	composite := Composite(dims)
	risk := DeriveRiskParams(q, s.trading)

	var decision domain.Decision
	switch {
	case composite >= s.scoring.BuyThreshold:
		decision = domain.DecisionBuy
	case composite >= s.scoring.WatchlistThreshold:
		decision = domain.DecisionWatchlist
	default:
		decision = domain.DecisionSkip
	}

	if risk.RiskRewardRatio < s.trading.MinRiskReward {
		decision = domain.DecisionSkip
	}

	return domain.OpportunityScore{
		Symbol:     sym,
		Dimensions: dims,
		Composite:  composite,
		Decision:   decision,
		Risk:       risk,
		Quote:      q,
	}
}
