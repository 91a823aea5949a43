package scoring

import "github.com/swingscan/swingscan/internal/domain"

// missingDefaults is the single table of scores substituted when the
// source data behind a dimension is absent. Keeping the policy in one
// place makes it auditable and independently testable.
//
// Catalyst-driven dimensions fall to the floor without a catalyst;
// fundamentals fall to the midpoint so data-sparse symbols are not
// unfairly penalized.
var missingDefaults = map[domain.Dimension]int{
	domain.DimCatalystTiming:     1,
	domain.DimFundamentalQuality: 3,
	domain.DimCatalystConviction: 1,
}

// MissingDefault returns the documented substitute score for a
// dimension whose inputs are absent.
func MissingDefault(d domain.Dimension) int {
	if v, ok := missingDefaults[d]; ok {
		return v
	}
	return 1
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
