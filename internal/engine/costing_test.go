package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBom() []BomLine {
	return []BomLine{
		{ProductCode: "P1", PartName: "Resistor", Quantity: 2, UnitPriceUSD: decimal.NewFromFloat(5.0)},
		{ProductCode: "P1", PartName: "Capacitor", Quantity: 1, UnitPriceUSD: decimal.NewFromFloat(3.0)},
	}
}

func fixtureManufacturing() ManufacturingParams {
	return ManufacturingParams{
		SMDCostPerComponent: decimal.NewFromInt(100),
		THTCostPerComponent: decimal.NewFromInt(50),
		AssemblyTimeMin:     30,
		QCTestTimeMin:       15,
		WorkerHourCost:      decimal.NewFromInt(200),
	}
}

func fixtureLogistics() LogisticsParams {
	return LogisticsParams{
		ShippingCostUSD:  decimal.NewFromInt(20),
		CustomsClearance: decimal.NewFromInt(100000),
		DutyPercent:      10,
		ExchangeRate:     decimal.NewFromInt(50000),
	}
}

func fixtureInventory() InventoryParams {
	return InventoryParams{InventoryDays: 365, CapitalCostRate: 10}
}

func assertDecimalEq(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.InDelta(t, expected, actual.InexactFloat64(), 1e-6)
}

func TestComputeCostBreakdown(t *testing.T) {
	b := ComputeCostBreakdown(fixtureBom(), fixtureManufacturing(), fixtureLogistics(), fixtureInventory())

	assertDecimalEq(t, 650_000, b.BomCost)       // 13 USD × 50 000
	assertDecimalEq(t, 450, b.AssemblyCost)      // 3 components × (100+50)
	assertDecimalEq(t, 150, b.LaborCost)         // 45 min × 200/h
	assertDecimalEq(t, 1_165_000, b.LogisticsCost)
	assertDecimalEq(t, 65_000, b.InventoryCost)  // full year carry at 10%
	assertDecimalEq(t, 1_880_600, b.Total())
}

func TestCostPlusPrice_MarkupWins(t *testing.T) {
	total := decimal.NewFromInt(1_880_600)
	price := CostPlusPrice(total, 20, decimal.NewFromInt(2_000_000))

	// 1 880 600 × 1.2 beats the competitor average
	assertDecimalEq(t, 2_256_720, price)
}

func TestCostPlusPrice_CompetitorAnchorWins(t *testing.T) {
	total := decimal.NewFromInt(1_880_600)
	price := CostPlusPrice(total, 20, decimal.NewFromInt(2_500_000))

	assertDecimalEq(t, 2_500_000, price)
}

func TestCostPlusPrice_NoCompetitor(t *testing.T) {
	price := CostPlusPrice(decimal.NewFromInt(100), 30, decimal.Zero)
	assertDecimalEq(t, 130, price)
}

func TestSimulateExchangeRates_CostsRiseWithRate(t *testing.T) {
	rates := []decimal.Decimal{
		decimal.NewFromInt(50000),
		decimal.NewFromInt(60000),
		decimal.NewFromInt(70000),
	}
	results := SimulateExchangeRates(
		fixtureBom(), rates, fixtureManufacturing(), fixtureLogistics(), fixtureInventory(),
		10, decimal.Zero,
	)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.True(t, r.ExchangeRate.Equal(rates[i]), "rate order must be preserved")
	}
	for i := 1; i < len(results); i++ {
		assert.True(t, results[i].TotalCost.GreaterThan(results[i-1].TotalCost),
			"a weaker local currency must land a higher cost")
	}
}
