package billing

import (
	"math"
	"strings"

	"github.com/clinicore/clinic-scheduling/internal/scheduling"
)

// timeMultipliers scales the specialty base fee by appointment length.
var timeMultipliers = map[scheduling.Duration]float64{
	scheduling.Duration30: 1.5,
	scheduling.Duration45: 2.0,
	scheduling.Duration60: 2.5,
}

// Quote is a derived, non-persisted billing estimate.
type Quote struct {
	BaseFee         float64
	TimeMultiplier  float64
	GrossCost       float64
	DiscountPercent float64
	DiscountAmount  float64
	NetCost         float64
}

// Calculator maps (specialty, duration, insurance) to a monetary estimate.
// Both rate tables are captured at construction, so identical inputs always
// produce identical quotes for the life of the calculator.
type Calculator struct {
	fees      map[string]float64 // keyed by normalized specialty
	discounts map[string]float64 // keyed by insurance id
}

// NewCalculator builds a calculator from a specialty fee table and an
// insurance discount table. Fee keys are normalized; discount keys are
// matched exactly after trimming.
func NewCalculator(fees, discounts map[string]float64) *Calculator {
	c := &Calculator{
		fees:      make(map[string]float64, len(fees)),
		discounts: make(map[string]float64, len(discounts)),
	}
	for spec, fee := range fees {
		c.fees[normalizeSpecialty(spec)] = fee
	}
	for id, pct := range discounts {
		c.discounts[strings.TrimSpace(id)] = pct
	}
	return c
}

// Quote computes the estimate. Unknown specialties cost 0 and unknown or empty
// insurance ids discount 0; neither is an error. A duration outside the
// bookable set falls back to the 30-minute multiplier — the engine rejects
// such durations before they reach billing, so the fallback only matters for
// callers that bypass it.
func (c *Calculator) Quote(specialty string, duration scheduling.Duration, insuranceID string) Quote {
	baseFee := c.fees[normalizeSpecialty(specialty)]

	mult, ok := timeMultipliers[duration]
	if !ok {
		mult = timeMultipliers[scheduling.Duration30]
	}

	gross := round2(baseFee * mult)

	var discountPct float64
	if id := strings.TrimSpace(insuranceID); id != "" {
		discountPct = c.discounts[id]
	}

	discountAmt := round2(gross * discountPct / 100)
	net := round2(gross - discountAmt)

	return Quote{
		BaseFee:         baseFee,
		TimeMultiplier:  mult,
		GrossCost:       gross,
		DiscountPercent: discountPct,
		DiscountAmount:  discountAmt,
		NetCost:         net,
	}
}

func normalizeSpecialty(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
