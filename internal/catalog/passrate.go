// Package catalog holds the pure catalog pipeline: the per-user overlay
// resolver, the pass-rate calculator, the filter chain and pagination.
// Nothing in here touches storage; callers load the collections and hand
// them in.
package catalog

import "math"

// PassRate returns accepted/total as a percentage rounded to one decimal.
// A catalog entry nobody has submitted to has a pass rate of 0. Rounding is
// half away from zero, which is half-up over the non-negative domain.
func PassRate(total, accepted int) float64 {
	if total <= 0 {
		return 0
	}
	if accepted < 0 {
		accepted = 0
	}
	if accepted > total {
		accepted = total
	}
	return math.Round(float64(accepted)/float64(total)*100*10) / 10
}
