package service

import (
	"math"
	"sort"
	"time"

	"github.com/wanderly/agency-api/internal/domain"
)

// DefaultFallbackSchedule applies when an item carries no cancellation policy:
// full refund a month out, half at two weeks, a quarter at one week, then nothing.
var DefaultFallbackSchedule = []domain.RefundRule{
	{DaysBeforeTravel: 30, RefundPercentage: 100},
	{DaysBeforeTravel: 14, RefundPercentage: 50},
	{DaysBeforeTravel: 7, RefundPercentage: 25},
}

// RefundCalculator evaluates cancellation policies against a quote. It is a
// pure computation over in-memory data; all tunables are carried on the value
// so nothing is hardcoded.
type RefundCalculator struct {
	// ClawbackRate is the flat share of the paid amount clawed back from
	// agent commissions whenever any refund applies. It is deliberately not
	// tied to the commission's own recorded rate.
	ClawbackRate float64

	// ServiceFeeRate is the share of the gross refund retained as a
	// cancellation handling fee.
	ServiceFeeRate float64

	// Fallback is the schedule used for items without a policy.
	Fallback []domain.RefundRule

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewRefundCalculator returns a calculator with the given rates and the
// default fallback schedule. Rates are fractions, e.g. 0.10 for 10%.
func NewRefundCalculator(clawbackRate, serviceFeeRate float64) *RefundCalculator {
	return &RefundCalculator{
		ClawbackRate:   clawbackRate,
		ServiceFeeRate: serviceFeeRate,
		Fallback:       DefaultFallbackSchedule,
		Now:            time.Now,
	}
}

// Calculate computes the refund for a quote. The quote-level percentage is
// the maximum of the item percentages, not a weighted average: a single
// fully-refundable item unlocks the maximum tier for the whole quote's gross
// amount. The per-item breakdown still shows each item's own percentage and
// is emitted for every item, zero-refund ones included, for audit display.
func (c *RefundCalculator) Calculate(quote *domain.Quote) domain.RefundCalculation {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	fallback := c.Fallback
	if fallback == nil {
		fallback = DefaultFallbackSchedule
	}

	totalPaid := quote.PaidAmount
	maxPercentage := 0.0
	breakdown := make([]domain.RefundLineItem, 0, len(quote.Items))

	for _, item := range quote.Items {
		pct, missingDate := itemRefundPercentage(&item, now, fallback)
		if pct > maxPercentage {
			maxPercentage = pct
		}
		paid := item.PaidValue()
		breakdown = append(breakdown, domain.RefundLineItem{
			ItemID:            item.ID,
			Name:              item.Name,
			PaidAmount:        paid,
			RefundAmount:      round2(paid * pct / 100),
			RefundPercentage:  pct,
			MissingTravelDate: missingDate,
		})
	}

	gross := round2(totalPaid * maxPercentage / 100)
	fee := round2(gross * c.ServiceFeeRate)

	calc := domain.RefundCalculation{
		RefundAmount:     gross,
		RefundPercentage: maxPercentage,
		ServiceFee:       fee,
		ClientReceives:   round2(gross - fee),
		Breakdown:        breakdown,
	}
	if maxPercentage > 0 {
		calc.ShouldClawbackCommission = true
		calc.CommissionClawback = round2(totalPaid * c.ClawbackRate)
	}
	return calc
}

// itemRefundPercentage evaluates one item's policy at the given instant.
// An item whose policy needs a travel date it does not have contributes 0%
// and is flagged, rather than poisoning the computation.
func itemRefundPercentage(item *domain.QuoteItem, now time.Time, fallback []domain.RefundRule) (pct float64, missingDate bool) {
	policy := item.CancellationPolicy

	if policy != nil && policy.NonRefundable {
		return 0, false
	}
	if policy != nil && policy.FreeCancellationUntil != nil && now.Before(*policy.FreeCancellationUntil) {
		return 100, false
	}

	var rules []domain.RefundRule
	switch {
	case policy != nil && len(policy.RefundRules) > 0:
		rules = policy.RefundRules
	case policy == nil:
		rules = fallback
	default:
		// Policy present but nothing applies (e.g. an expired
		// free-cancellation deadline with no tiered rules).
		return 0, false
	}

	if item.StartDate.IsZero() {
		return 0, true
	}
	days := daysUntil(item.StartDate, now)

	sorted := make([]domain.RefundRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DaysBeforeTravel > sorted[j].DaysBeforeTravel
	})
	for _, rule := range sorted {
		if days >= rule.DaysBeforeTravel {
			return rule.RefundPercentage, false
		}
	}
	return 0, false
}

// daysUntil returns whole days between now and the travel date, rounded down.
// Bounds are inclusive: exactly 14 days out satisfies a 14-day rule.
func daysUntil(travel, now time.Time) int {
	return int(math.Floor(travel.Sub(now).Hours() / 24))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
