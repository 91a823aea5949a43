package scoring

import (
	"fmt"

	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
)

// CheckEligibility applies the hard pre-filter before any scoring:
// price range, market-cap range, beta floor, and the cap-tiered
// minimum average volume. A non-empty reason means the symbol is
// excluded entirely, not scored as SKIP. Fields the source did not
// report are not grounds for exclusion.
func CheckEligibility(q *domain.Quote, f config.FiltersConfig) (reason string, eligible bool) {
	if q.Price < f.MinPrice {
		return fmt.Sprintf("price $%.2f below minimum $%.2f", q.Price, f.MinPrice), false
	}
	if q.Price > f.MaxPrice {
		return fmt.Sprintf("price $%.2f above maximum $%.2f", q.Price, f.MaxPrice), false
	}

	if q.MarketCap != nil {
		if *q.MarketCap < f.MinMarketCap {
			return fmt.Sprintf("market cap $%.0fM below minimum $%.0fM", *q.MarketCap/1e6, f.MinMarketCap/1e6), false
		}
		if *q.MarketCap > f.MaxMarketCap {
			return fmt.Sprintf("market cap $%.0fB above maximum $%.0fB", *q.MarketCap/1e9, f.MaxMarketCap/1e9), false
		}
	}

	if q.Beta != nil && *q.Beta < f.MinBeta {
		return fmt.Sprintf("beta %.2f below minimum %.2f", *q.Beta, f.MinBeta), false
	}

	if q.MarketCap != nil && q.AvgVolume != nil {
		min := minVolumeForCap(*q.MarketCap, f.MinVolume)
		if *q.AvgVolume < min {
			return fmt.Sprintf("avg volume %.0f below %s-cap minimum %.0f",
				*q.AvgVolume, capTier(*q.MarketCap), min), false
		}
	}

	return "", true
}

func capTier(marketCap float64) string {
	switch {
	case marketCap < 1e9:
		return "small"
	case marketCap < 10e9:
		return "mid"
	default:
		return "large"
	}
}

func minVolumeForCap(marketCap float64, tiers config.VolumeTierConfig) float64 {
	switch capTier(marketCap) {
	case "small":
		return tiers.Small
	case "mid":
		return tiers.Mid
	default:
		return tiers.Large
	}
}
