// Package scoring turns normalized quotes into bounded decisions: five
// dimension scores, a 0-100 composite, and a BUY/WATCHLIST/SKIP call
// with attached risk parameters. Every threshold comes from
// configuration; nothing here is random or time-dependent.
package scoring

import (
	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
)

// Evaluator computes the five dimension scores for one symbol.
type Evaluator struct {
	scoring config.ScoringConfig
	trading config.TradingConfig
}

func NewEvaluator(scoring config.ScoringConfig, trading config.TradingConfig) *Evaluator {
	return &Evaluator{scoring: scoring, trading: trading}
}

// Evaluate scores all five dimensions. Missing optional data never
// errors; the documented default from the missing-data table is
// substituted instead.
func (e *Evaluator) Evaluate(q *domain.Quote, cat *domain.CatalystContext) domain.Dimensions {
	risk := DeriveRiskParams(q, e.trading)
	return domain.Dimensions{
		domain.DimCatalystTiming:     e.catalystTiming(cat),
		domain.DimTechnicalSetup:     e.technicalSetup(q),
		domain.DimRiskReward:         e.riskReward(risk.RiskRewardRatio),
		domain.DimFundamentalQuality: e.fundamentalQuality(q),
		domain.DimCatalystConviction: e.catalystConviction(cat),
	}
}

// catalystTiming scores inversely with the days-to-event bucket: a
// closer dated event means more compressed asymmetry.
func (e *Evaluator) catalystTiming(cat *domain.CatalystContext) int {
	if cat == nil {
		return MissingDefault(domain.DimCatalystTiming)
	}
	days := cat.DaysToEvent
	if days < 0 {
		// Event already passed; no timing edge left.
		return 1
	}
	for i, cutoff := range e.scoring.TimingDays {
		if days <= cutoff {
			return clampScore(5 - i)
		}
	}
	return 1
}

// technicalSetup rewards price pressing toward the top of its 52-week
// range on above-average volume.
func (e *Evaluator) technicalSetup(q *domain.Quote) int {
	score := 1

	if q.High52W != nil && q.Low52W != nil && *q.High52W > *q.Low52W {
		pos := (q.Price - *q.Low52W) / (*q.High52W - *q.Low52W)
		switch {
		case pos >= e.scoring.RangeBreakoutPos:
			score += 2
		case pos >= e.scoring.RangeUpperPos:
			score++
		}
	}

	if q.Volume != nil && q.AvgVolume != nil && *q.AvgVolume > 0 {
		ratio := *q.Volume / *q.AvgVolume
		switch {
		case ratio >= e.scoring.VolumeStrongRatio:
			score += 2
		case ratio >= e.scoring.VolumeElevatedRatio:
			score++
		}
	}

	return clampScore(score)
}

// riskReward buckets the candidate stop-vs-target ratio.
func (e *Evaluator) riskReward(ratio float64) int {
	for i, cutoff := range e.scoring.RiskRewardBuckets {
		if ratio >= cutoff {
			return clampScore(5 - i)
		}
	}
	return 1
}

// fundamentalQuality scores growth and margin proxies when present.
// With neither reported the midpoint default applies.
func (e *Evaluator) fundamentalQuality(q *domain.Quote) int {
	if q.RevenueGrowth == nil && q.ProfitMargin == nil {
		return MissingDefault(domain.DimFundamentalQuality)
	}

	score := 1
	if q.RevenueGrowth != nil {
		switch {
		case *q.RevenueGrowth >= e.scoring.GrowthStrong:
			score += 2
		case *q.RevenueGrowth >= e.scoring.GrowthPositive:
			score++
		}
	}
	if q.ProfitMargin != nil {
		switch {
		case *q.ProfitMargin >= e.scoring.MarginStrong:
			score += 2
		case *q.ProfitMargin >= e.scoring.MarginPositive:
			score++
		}
	}
	return clampScore(score)
}

// catalystConviction buckets the catalyst confidence field.
func (e *Evaluator) catalystConviction(cat *domain.CatalystContext) int {
	if cat == nil {
		return MissingDefault(domain.DimCatalystConviction)
	}
	for i, cutoff := range e.scoring.ConvictionBuckets {
		if cat.Confidence >= cutoff {
			return clampScore(5 - i)
		}
	}
	return 1
}
