package engine

import (
	"github.com/shopspring/decimal"
)

// BomLine is one bill-of-materials line as seen by the cost engine.
type BomLine struct {
	ProductCode  string
	PartName     string
	Quantity     int
	UnitPriceUSD decimal.Decimal
}

// ManufacturingParams cover per-component placement and per-unit labor costs
// (local currency, except where named USD).
type ManufacturingParams struct {
	SMDCostPerComponent decimal.Decimal
	THTCostPerComponent decimal.Decimal
	AssemblyTimeMin     float64
	QCTestTimeMin       float64
	WorkerHourCost      decimal.Decimal
}

// LogisticsParams cover the import chain: shipping (USD), customs clearance
// (local), ad valorem duty, and the exchange rate used to land USD amounts.
type LogisticsParams struct {
	ShippingCostUSD  decimal.Decimal
	CustomsClearance decimal.Decimal
	DutyPercent      float64
	ExchangeRate     decimal.Decimal
}

// InventoryParams cover the capital cost of stock held before sale.
type InventoryParams struct {
	InventoryDays   int
	CapitalCostRate float64 // annual, percent
}

// CostBreakdown is the per-unit cost decomposition in local currency.
type CostBreakdown struct {
	BomCost       decimal.Decimal
	AssemblyCost  decimal.Decimal
	LaborCost     decimal.Decimal
	LogisticsCost decimal.Decimal
	InventoryCost decimal.Decimal
}

func (c CostBreakdown) Total() decimal.Decimal {
	return c.BomCost.Add(c.AssemblyCost).Add(c.LaborCost).Add(c.LogisticsCost).Add(c.InventoryCost)
}

// ComputeCostBreakdown derives the unit cost structure from a BOM and the
// manufacturing/logistics/inventory inputs.
func ComputeCostBreakdown(items []BomLine, m ManufacturingParams, l LogisticsParams, inv InventoryParams) CostBreakdown {
	totalComponents := decimal.Zero
	bomCostUSD := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totalComponents = totalComponents.Add(qty)
		bomCostUSD = bomCostUSD.Add(qty.Mul(item.UnitPriceUSD))
	}
	bomCost := bomCostUSD.Mul(l.ExchangeRate)

	assemblyCost := totalComponents.Mul(m.SMDCostPerComponent.Add(m.THTCostPerComponent))

	laborHours := decimal.NewFromFloat((m.AssemblyTimeMin + m.QCTestTimeMin) / 60)
	laborCost := laborHours.Mul(m.WorkerHourCost)

	duty := decimal.NewFromFloat(l.DutyPercent / 100)
	logisticsCost := l.ShippingCostUSD.Mul(l.ExchangeRate).
		Add(l.CustomsClearance).
		Add(duty.Mul(bomCost))

	carry := decimal.NewFromFloat(float64(inv.InventoryDays) / 365 * inv.CapitalCostRate / 100)
	inventoryCost := bomCost.Mul(carry)

	return CostBreakdown{
		BomCost:       bomCost,
		AssemblyCost:  assemblyCost,
		LaborCost:     laborCost,
		LogisticsCost: logisticsCost,
		InventoryCost: inventoryCost,
	}
}

// CostPlusPrice is the margin heuristic: total cost marked up by
// marginPercent, anchored at the competitor average when that is higher.
// It feeds the ensemble as an alternative estimator next to the optimizer.
func CostPlusPrice(totalCost decimal.Decimal, marginPercent float64, competitorAvg decimal.Decimal) decimal.Decimal {
	markup := decimal.NewFromFloat(1 + marginPercent/100)
	base := totalCost.Mul(markup)
	if competitorAvg.GreaterThan(base) {
		return competitorAvg
	}
	return base
}
