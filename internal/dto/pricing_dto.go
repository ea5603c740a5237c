package dto

import (
	"github.com/shopspring/decimal"
)

// Cost input currencies.
const (
	CurrencyLocal = "local"
	CurrencyUSD   = "USD"
)

// RecommendRequest asks for a sell-price recommendation. The cost input is
// supplied per request and never persisted by the engine; when omitted, the
// product's BOM material cost (USD, with next-month part-price projections
// where a part model is trained) stands in for it. A USD cost basis is
// converted with FxRate if given, otherwise with the trained forecaster's
// projection at FxHorizonDays.
type RecommendRequest struct {
	ProductCode     string           `json:"product_code" validate:"required"`
	CostPerUnit     *decimal.Decimal `json:"cost_per_unit,omitempty"`
	Currency        string           `json:"currency" validate:"required,oneof=local USD"`
	FxRate          *decimal.Decimal `json:"fx_rate,omitempty"`
	FxHorizonDays   *int             `json:"fx_horizon_days,omitempty" validate:"omitempty,gt=0"`
	MarginPercent   *float64         `json:"margin_percent,omitempty" validate:"omitempty,gte=0"`
	CompetitorPrice *decimal.Decimal `json:"competitor_price,omitempty"`
}

// RecommendationResponse is the terminal pricing artifact for one request.
type RecommendationResponse struct {
	ProductCode      string                     `json:"product_code"`
	RecommendedPrice decimal.Decimal            `json:"recommended_price"`
	ExpectedDemand   *float64                   `json:"expected_demand,omitempty"`
	ExpectedProfit   *decimal.Decimal           `json:"expected_profit,omitempty"`
	MethodBreakdown  map[string]decimal.Decimal `json:"method_breakdown"`
	Confidence       float64                    `json:"confidence"`
	Warnings         []string                   `json:"warnings"`
	ModelState       string                     `json:"model_state"`
	ModelVersion     int                        `json:"model_version,omitempty"`
}

// ScenarioRequest simulates cost and price across candidate exchange rates,
// holding every other input fixed.
type ScenarioRequest struct {
	ProductCode   string            `json:"product_code" validate:"required"`
	ExchangeRates []decimal.Decimal `json:"exchange_rates" validate:"required,min=1"`

	SMDCostPerComponent decimal.Decimal `json:"smd_cost_per_component"`
	THTCostPerComponent decimal.Decimal `json:"tht_cost_per_component"`
	AssemblyTimeMin     float64         `json:"assembly_time_min" validate:"gte=0"`
	QCTestTimeMin       float64         `json:"qc_test_time_min" validate:"gte=0"`
	WorkerHourCost      decimal.Decimal `json:"worker_hour_cost"`

	ShippingCostUSD  decimal.Decimal `json:"shipping_cost_usd"`
	CustomsClearance decimal.Decimal `json:"customs_clearance"`
	DutyPercent      float64         `json:"duty_percent" validate:"gte=0"`

	InventoryDays   int     `json:"inventory_days" validate:"gte=0"`
	CapitalCostRate float64 `json:"capital_cost_rate" validate:"gte=0"`

	MarginPercent   *float64         `json:"margin_percent,omitempty" validate:"omitempty,gte=0"`
	CompetitorPrice *decimal.Decimal `json:"competitor_price,omitempty"`
}

// ScenarioRow is one simulated exchange-rate outcome.
type ScenarioRow struct {
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	RecommendedPrice decimal.Decimal `json:"recommended_price"`
}

// ScenarioResponse wraps the simulated rows for one product.
type ScenarioResponse struct {
	ProductCode string        `json:"product_code"`
	Scenarios   []ScenarioRow `json:"scenarios"`
}
