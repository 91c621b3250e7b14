package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderly/agency-api/internal/domain"
)

var calcNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testCalculator() *RefundCalculator {
	c := NewRefundCalculator(0.10, 0.05)
	c.Now = func() time.Time { return calcNow }
	return c
}

func travelIn(days int) time.Time {
	return calcNow.Add(time.Duration(days) * 24 * time.Hour)
}

func quoteWith(paid float64, items ...domain.QuoteItem) *domain.Quote {
	return &domain.Quote{
		Items:      items,
		PaidAmount: paid,
	}
}

func TestRefundCalculator_NonRefundable(t *testing.T) {
	calc := testCalculator()

	// Non-refundable wins regardless of how far out travel is
	for _, days := range []int{1, 7, 30, 365} {
		q := quoteWith(1000, domain.QuoteItem{
			Name:               "Hotel Bergen",
			StartDate:          travelIn(days),
			Price:              1000,
			CancellationPolicy: &domain.CancellationPolicy{NonRefundable: true},
		})
		result := calc.Calculate(q)
		assert.Equal(t, 0.0, result.RefundAmount, "days=%d", days)
		assert.Equal(t, 0.0, result.RefundPercentage, "days=%d", days)
		assert.False(t, result.ShouldClawbackCommission, "days=%d", days)
		require.Len(t, result.Breakdown, 1)
		assert.Equal(t, 0.0, result.Breakdown[0].RefundAmount)
	}
}

func TestRefundCalculator_FreeCancellationWindow(t *testing.T) {
	calc := testCalculator()

	deadline := calcNow.Add(48 * time.Hour)
	q := quoteWith(2000, domain.QuoteItem{
		Name:               "City tour",
		StartDate:          travelIn(3),
		Price:              2000,
		CancellationPolicy: &domain.CancellationPolicy{FreeCancellationUntil: &deadline},
	})

	result := calc.Calculate(q)
	assert.Equal(t, 100.0, result.RefundPercentage)
	assert.Equal(t, 2000.0, result.RefundAmount)

	// Past the deadline, with no tiered rules to fall back on, the item
	// refunds nothing; the default schedule does not apply to items that
	// carry a policy.
	passed := calcNow.Add(-time.Hour)
	q.Items[0].CancellationPolicy = &domain.CancellationPolicy{FreeCancellationUntil: &passed}
	result = calc.Calculate(q)
	assert.Equal(t, 0.0, result.RefundPercentage)
}

func TestRefundCalculator_TieredRules(t *testing.T) {
	calc := testCalculator()
	rules := []domain.RefundRule{
		{DaysBeforeTravel: 30, RefundPercentage: 100},
		{DaysBeforeTravel: 14, RefundPercentage: 50},
		{DaysBeforeTravel: 7, RefundPercentage: 25},
	}

	tests := []struct {
		name     string
		days     int
		expected float64
	}{
		{"far out hits the top tier", 45, 100},
		{"exactly 30 days is inclusive", 30, 100},
		{"20 days selects the 14-day tier", 20, 50},
		{"exactly 14 days is inclusive", 14, 50},
		{"10 days selects the 7-day tier", 10, 25},
		{"exactly 7 days is inclusive", 7, 25},
		{"inside a week refunds nothing", 5, 0},
		{"day of travel refunds nothing", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := quoteWith(1000, domain.QuoteItem{
				Name:               "Flight OSL-JFK",
				StartDate:          travelIn(tt.days),
				Price:              1000,
				CancellationPolicy: &domain.CancellationPolicy{RefundRules: rules},
			})
			result := calc.Calculate(q)
			assert.Equal(t, tt.expected, result.RefundPercentage)
		})
	}
}

func TestRefundCalculator_RulesUnsortedInput(t *testing.T) {
	calc := testCalculator()

	// Rule order in the stored policy must not matter; the most generous
	// satisfied tier wins.
	q := quoteWith(1000, domain.QuoteItem{
		Name:      "Flight",
		StartDate: travelIn(40),
		Price:     1000,
		CancellationPolicy: &domain.CancellationPolicy{RefundRules: []domain.RefundRule{
			{DaysBeforeTravel: 7, RefundPercentage: 25},
			{DaysBeforeTravel: 30, RefundPercentage: 100},
			{DaysBeforeTravel: 14, RefundPercentage: 50},
		}},
	})
	result := calc.Calculate(q)
	assert.Equal(t, 100.0, result.RefundPercentage)
}

func TestRefundCalculator_FallbackSchedule(t *testing.T) {
	calc := testCalculator()

	tests := []struct {
		days     int
		expected float64
	}{
		{35, 100},
		{30, 100},
		{20, 50},
		{14, 50},
		{10, 25},
		{7, 25},
		{3, 0},
	}
	for _, tt := range tests {
		q := quoteWith(500, domain.QuoteItem{
			Name:      "Transfer",
			StartDate: travelIn(tt.days),
			Price:     500,
		})
		result := calc.Calculate(q)
		assert.Equal(t, tt.expected, result.RefundPercentage, "days=%d", tt.days)
	}
}

func TestRefundCalculator_QuoteLevelMax(t *testing.T) {
	calc := testCalculator()

	// One fully refundable item out of five unlocks the maximum tier for
	// the whole quote's gross refund; the breakdown keeps per-item numbers.
	deadline := calcNow.Add(24 * time.Hour)
	items := []domain.QuoteItem{
		{Name: "a", StartDate: travelIn(2), Price: 100, CancellationPolicy: &domain.CancellationPolicy{NonRefundable: true}},
		{Name: "b", StartDate: travelIn(2), Price: 100, CancellationPolicy: &domain.CancellationPolicy{NonRefundable: true}},
		{Name: "c", StartDate: travelIn(2), Price: 100, CancellationPolicy: &domain.CancellationPolicy{NonRefundable: true}},
		{Name: "d", StartDate: travelIn(2), Price: 100, CancellationPolicy: &domain.CancellationPolicy{NonRefundable: true}},
		{Name: "e", StartDate: travelIn(2), Price: 100, CancellationPolicy: &domain.CancellationPolicy{FreeCancellationUntil: &deadline}},
	}
	q := quoteWith(500, items...)

	result := calc.Calculate(q)
	assert.Equal(t, 100.0, result.RefundPercentage)
	assert.Equal(t, 500.0, result.RefundAmount)

	require.Len(t, result.Breakdown, 5)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, result.Breakdown[i].RefundPercentage)
		assert.Equal(t, 0.0, result.Breakdown[i].RefundAmount)
	}
	assert.Equal(t, 100.0, result.Breakdown[4].RefundPercentage)
	assert.Equal(t, 100.0, result.Breakdown[4].RefundAmount)
}

func TestRefundCalculator_ClawbackFlag(t *testing.T) {
	calc := testCalculator()

	q := quoteWith(10000, domain.QuoteItem{
		Name:      "Hotel",
		StartDate: travelIn(10),
		Price:     10000,
	})
	result := calc.Calculate(q)
	assert.Equal(t, 25.0, result.RefundPercentage)
	assert.True(t, result.ShouldClawbackCommission)
	// Flat rate over the paid amount, independent of the refund percentage
	assert.Equal(t, 1000.0, result.CommissionClawback)

	q.Items[0].CancellationPolicy = &domain.CancellationPolicy{NonRefundable: true}
	result = calc.Calculate(q)
	assert.False(t, result.ShouldClawbackCommission)
	assert.Equal(t, 0.0, result.CommissionClawback)
}

func TestRefundCalculator_ServiceFeeSplit(t *testing.T) {
	calc := testCalculator()

	q := quoteWith(1000, domain.QuoteItem{
		Name:      "Hotel",
		StartDate: travelIn(30),
		Price:     1000,
	})
	result := calc.Calculate(q)
	assert.Equal(t, 1000.0, result.RefundAmount)
	assert.Equal(t, 50.0, result.ServiceFee)
	assert.Equal(t, 950.0, result.ClientReceives)
}

func TestRefundCalculator_MissingTravelDate(t *testing.T) {
	calc := testCalculator()

	// A zero travel date cannot satisfy any tier; it contributes 0% and is
	// flagged in the breakdown instead of producing garbage numbers.
	q := quoteWith(800,
		domain.QuoteItem{Name: "no date", Price: 300},
		domain.QuoteItem{Name: "dated", StartDate: travelIn(20), Price: 500},
	)
	result := calc.Calculate(q)

	require.Len(t, result.Breakdown, 2)
	assert.True(t, result.Breakdown[0].MissingTravelDate)
	assert.Equal(t, 0.0, result.Breakdown[0].RefundPercentage)
	assert.False(t, result.Breakdown[1].MissingTravelDate)
	assert.Equal(t, 50.0, result.RefundPercentage)
}

func TestRefundCalculator_BreakdownUsesClientPrice(t *testing.T) {
	calc := testCalculator()

	q := quoteWith(1200,
		domain.QuoteItem{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "marked up", StartDate: travelIn(30), Price: 900, ClientPrice: 1200},
	)
	result := calc.Calculate(q)
	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, 1200.0, result.Breakdown[0].PaidAmount)
	assert.Equal(t, 1200.0, result.Breakdown[0].RefundAmount)
}

func TestRefundCalculator_EmptyQuote(t *testing.T) {
	calc := testCalculator()

	result := calc.Calculate(quoteWith(0))
	assert.Equal(t, 0.0, result.RefundAmount)
	assert.Equal(t, 0.0, result.RefundPercentage)
	assert.False(t, result.ShouldClawbackCommission)
	assert.Empty(t, result.Breakdown)
}
