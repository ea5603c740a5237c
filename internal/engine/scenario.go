package engine

import (
	"github.com/shopspring/decimal"
)

// ScenarioResult is the cost and cost-plus price landed at one candidate
// exchange rate.
type ScenarioResult struct {
	ExchangeRate     decimal.Decimal
	TotalCost        decimal.Decimal
	RecommendedPrice decimal.Decimal
}

// SimulateExchangeRates recomputes the cost breakdown and cost-plus price for
// each candidate rate, holding every other input fixed. Results preserve the
// caller's rate order.
func SimulateExchangeRates(
	items []BomLine,
	rates []decimal.Decimal,
	m ManufacturingParams,
	l LogisticsParams,
	inv InventoryParams,
	marginPercent float64,
	competitorAvg decimal.Decimal,
) []ScenarioResult {
	results := make([]ScenarioResult, 0, len(rates))
	for _, rate := range rates {
		atRate := l
		atRate.ExchangeRate = rate

		breakdown := ComputeCostBreakdown(items, m, atRate, inv)
		total := breakdown.Total()

		results = append(results, ScenarioResult{
			ExchangeRate:     rate,
			TotalCost:        total,
			RecommendedPrice: CostPlusPrice(total, marginPercent, competitorAvg),
		})
	}
	return results
}
