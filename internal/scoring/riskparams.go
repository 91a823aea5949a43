package scoring

import (
	"math"

	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
)

// DeriveRiskParams computes the advisory trade parameters for a quote
// from trading-config constants plus the quote's volatility proxy.
// Pure and deterministic: same quote and config, same params.
func DeriveRiskParams(q *domain.Quote, cfg config.TradingConfig) domain.RiskParams {
	entry := q.Price * (1 - cfg.EntryDiscountPct/100)

	// Stop distance widens with beta; capped at the configured ceiling.
	stopPct := 6.0
	if q.Beta != nil {
		switch {
		case *q.Beta >= 2.0:
			stopPct = 10.0
		case *q.Beta >= 1.5:
			stopPct = 8.0
		}
	}
	stopPct = math.Min(stopPct, cfg.MaxStopLossPct)

	// Aggressive target on strong recent momentum, conservative
	// otherwise.
	targetPct := cfg.TargetPctConservative
	if q.ChangePct > 2 {
		targetPct = cfg.TargetPctAggressive
	}

	ratio := 0.0
	if stopPct > 0 {
		ratio = round2(targetPct / stopPct)
	}

	sizePct := cfg.PositionSizePct
	if ratio >= cfg.MinRiskReward+1 {
		sizePct = cfg.PositionSizeExceptionalPct
	}

	return domain.RiskParams{
		EntryPrice:             round2(entry),
		StopLossPct:            stopPct,
		TargetPct:              targetPct,
		RiskRewardRatio:        ratio,
		PositionSizePct:        sizePct,
		MaxConcurrentPositions: cfg.MaxConcurrentPositions,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
