package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dev-shahrooz/Smart-Pricing/internal/config"
	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
)

// Estimator method names surfaced in the recommendation breakdown.
const (
	MethodElasticityOptimizer = "elasticity_optimizer"
	MethodCostPlus            = "cost_plus"
)

// ErrNoBom means a scenario was requested for a product with no BOM on file.
var ErrNoBom = errors.New("no BOM on file for product")

// RecommendService produces blended price recommendations and exchange-rate
// scenarios. It only reads model state; fits happen in TrainingService.
type RecommendService interface {
	Recommend(ctx context.Context, req dto.RecommendRequest) (*dto.RecommendationResponse, error)
	Simulate(ctx context.Context, req dto.ScenarioRequest) (*dto.ScenarioResponse, error)
}

type recommendService struct {
	models  *store.ModelStore
	bomRepo repository.BomRepository
	cfg     *config.Config
	params  engine.Params
}

func NewRecommendService(models *store.ModelStore, bomRepo repository.BomRepository, cfg *config.Config, params engine.Params) RecommendService {
	return &recommendService{models: models, bomRepo: bomRepo, cfg: cfg, params: params}
}

// ── Recommend ────────────────────────────────────────────────────────────────
// 1. Resolve the cost basis: the supplied cost, else the BOM material cost
// 2. Resolve the conversion rate (explicit > forecast) for a USD cost basis
// 3. Collect estimates: optimizer (if a model is trained) + cost-plus
// 4. Blend by declared confidence; stale models serve flagged, not refused

func (s *recommendService) Recommend(ctx context.Context, req dto.RecommendRequest) (*dto.RecommendationResponse, error) {
	if req.CostPerUnit != nil && !req.CostPerUnit.IsPositive() {
		return nil, &engine.InputValidationError{Field: "cost_per_unit", Reason: "must be positive"}
	}

	var warnings []string

	costPerUnit, costWarnings, err := s.resolveCost(ctx, req)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, costWarnings...)

	// BOM line prices are USD, so a derived cost always needs conversion.
	var rate *float64
	if req.CostPerUnit == nil || req.Currency == dto.CurrencyUSD {
		var fxWarnings []string
		rate, fxWarnings, err = s.resolveRate(req)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, fxWarnings...)
	}

	effectiveCost := costPerUnit
	if rate != nil {
		effectiveCost = costPerUnit * *rate
	}

	snap := s.models.Get(req.ProductCode)
	var estimates []engine.Estimate

	if snap.Elasticity != nil {
		opt, err := engine.Optimize(snap.Elasticity, costPerUnit, rate, s.params)
		if err != nil {
			return nil, err
		}
		est := engine.Estimate{
			Method:     MethodElasticityOptimizer,
			Price:      opt.Price,
			Confidence: opt.Confidence,
			Flags:      opt.Flags,
		}
		if snap.State == store.StateStale {
			est.Flags = append(est.Flags, engine.FlagStaleModel)
		}
		estimates = append(estimates, est)
	}

	margin := s.cfg.DefaultMarginPercent
	if req.MarginPercent != nil {
		margin = *req.MarginPercent
	}
	competitor := decimal.Zero
	if req.CompetitorPrice != nil {
		competitor = *req.CompetitorPrice
	}
	costPlus := engine.CostPlusPrice(decimal.NewFromFloat(effectiveCost), margin, competitor)
	estimates = append(estimates, engine.Estimate{
		Method:     MethodCostPlus,
		Price:      costPlus.InexactFloat64(),
		Confidence: s.params.BaselineWeight,
	})

	rec, err := engine.Blend(req.ProductCode, estimates, engine.ConfidenceWeight(s.params))
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, rec.Warnings...)

	resp := &dto.RecommendationResponse{
		ProductCode:      req.ProductCode,
		RecommendedPrice: decimal.NewFromFloat(rec.Price).Round(2),
		MethodBreakdown:  make(map[string]decimal.Decimal, len(rec.MethodBreakdown)),
		Confidence:       rec.Confidence,
		Warnings:         dedupe(warnings),
		ModelState:       string(snap.State),
		ModelVersion:     snap.Version,
	}
	for method, price := range rec.MethodBreakdown {
		resp.MethodBreakdown[method] = decimal.NewFromFloat(price).Round(2)
	}

	if snap.Elasticity != nil {
		demand := snap.Elasticity.Demand(rec.Price)
		profit := decimal.NewFromFloat(snap.Elasticity.Profit(rec.Price, effectiveCost)).Round(2)
		resp.ExpectedDemand = &demand
		resp.ExpectedProfit = &profit
	}
	return resp, nil
}

// resolveCost returns the per-unit cost basis in its own currency: the
// supplied cost as-is, otherwise the product's BOM material cost in USD. For
// BOM lines whose part has a trained price model, the next-month projection
// replaces the stored unit price — the cost a buyer will actually face.
func (s *recommendService) resolveCost(ctx context.Context, req dto.RecommendRequest) (float64, []string, error) {
	if req.CostPerUnit != nil {
		return req.CostPerUnit.InexactFloat64(), nil, nil
	}

	items, err := s.bomRepo.ListByProduct(ctx, req.ProductCode)
	if err != nil {
		return 0, nil, err
	}
	if len(items) == 0 {
		return 0, nil, &engine.InputValidationError{
			Field:  "cost_per_unit",
			Reason: "required when the product has no BOM on file",
		}
	}

	var warnings []string
	total := 0.0
	for _, item := range items {
		unit := item.UnitPriceUSD.InexactFloat64()
		snap := s.models.Get(model.PartModelKey(engine.PartSlug(item.PartName)))
		if snap.PartPrice != nil {
			if projected := snap.PartPrice.PredictNextMonth(); projected > 0 {
				unit = projected
				warnings = append(warnings, snap.PartPrice.Flags...)
			}
		}
		total += float64(item.Quantity) * unit
	}
	if total <= 0 {
		return 0, nil, &engine.InputValidationError{
			Field:  "cost_per_unit",
			Reason: "BOM material cost is zero; supply a cost explicitly",
		}
	}
	return total, warnings, nil
}

// resolveRate returns the local-per-USD conversion rate for a USD cost basis:
// an explicitly supplied rate wins, otherwise the trained forecaster projects
// one. A USD cost with neither is a hard input error — a missing number is
// never silently treated as 1.0.
func (s *recommendService) resolveRate(req dto.RecommendRequest) (*float64, []string, error) {
	if req.FxRate != nil {
		if !req.FxRate.IsPositive() {
			return nil, nil, &engine.InputValidationError{Field: "fx_rate", Reason: "must be positive"}
		}
		r := req.FxRate.InexactFloat64()
		return &r, nil, nil
	}

	fxSnap := s.models.Get(model.FxModelCode)
	if fxSnap.Forecast == nil {
		return nil, nil, &engine.InputValidationError{
			Field:  "currency",
			Reason: "cost basis is USD but no fx_rate was supplied and no rate forecaster is trained",
		}
	}

	horizon := s.cfg.DefaultFxHorizonDays
	if req.FxHorizonDays != nil {
		horizon = *req.FxHorizonDays
	}
	forecast, err := fxSnap.Forecast.Predict(horizon, s.params)
	if err != nil {
		return nil, nil, err
	}
	if forecast.Rate <= 0 {
		// A downward trend extrapolated far enough crosses zero; that
		// projection cannot convert a cost.
		return nil, nil, &engine.InputValidationError{Field: "fx_horizon_days", Reason: "projected rate is not positive at this horizon"}
	}

	warnings := forecast.Flags
	if fxSnap.State == store.StateStale {
		warnings = append(warnings, engine.FlagStaleModel)
	}
	return &forecast.Rate, warnings, nil
}

// ── Simulate ─────────────────────────────────────────────────────────────────

func (s *recommendService) Simulate(ctx context.Context, req dto.ScenarioRequest) (*dto.ScenarioResponse, error) {
	items, err := s.bomRepo.ListByProduct(ctx, req.ProductCode)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoBom
	}
	for _, rate := range req.ExchangeRates {
		if !rate.IsPositive() {
			return nil, &engine.InputValidationError{Field: "exchange_rates", Reason: "rates must be positive"}
		}
	}

	lines := make([]engine.BomLine, len(items))
	for i, item := range items {
		lines[i] = engine.BomLine{
			ProductCode:  item.ProductCode,
			PartName:     item.PartName,
			Quantity:     item.Quantity,
			UnitPriceUSD: item.UnitPriceUSD,
		}
	}

	margin := s.cfg.DefaultMarginPercent
	if req.MarginPercent != nil {
		margin = *req.MarginPercent
	}
	competitor := decimal.Zero
	if req.CompetitorPrice != nil {
		competitor = *req.CompetitorPrice
	}

	results := engine.SimulateExchangeRates(
		lines,
		req.ExchangeRates,
		engine.ManufacturingParams{
			SMDCostPerComponent: req.SMDCostPerComponent,
			THTCostPerComponent: req.THTCostPerComponent,
			AssemblyTimeMin:     req.AssemblyTimeMin,
			QCTestTimeMin:       req.QCTestTimeMin,
			WorkerHourCost:      req.WorkerHourCost,
		},
		engine.LogisticsParams{
			ShippingCostUSD:  req.ShippingCostUSD,
			CustomsClearance: req.CustomsClearance,
			DutyPercent:      req.DutyPercent,
		},
		engine.InventoryParams{
			InventoryDays:   req.InventoryDays,
			CapitalCostRate: req.CapitalCostRate,
		},
		margin,
		competitor,
	)

	resp := &dto.ScenarioResponse{ProductCode: req.ProductCode, Scenarios: make([]dto.ScenarioRow, len(results))}
	for i, r := range results {
		resp.Scenarios[i] = dto.ScenarioRow{
			ExchangeRate:     r.ExchangeRate,
			TotalCost:        r.TotalCost.Round(2),
			RecommendedPrice: r.RecommendedPrice.Round(2),
		}
	}
	return resp, nil
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
