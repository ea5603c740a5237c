package service

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
)

// Redis keys for the model-summary cache, invalidated on every retrain.
func ModelCacheKey(code string) string { return "models:summary:" + code }

const ModelListCacheKey = "models:summary:all"

// TrainingService runs batch fits and installs the results. Training is
// idempotent: rerunning on identical input replaces the prior model with
// bit-for-bit identical parameters (only the timestamp and version move).
type TrainingService interface {
	TrainElasticity(ctx context.Context, productCode string) (*dto.ModelSummary, error)
	TrainFx(ctx context.Context) (*dto.ModelSummary, error)
	// TrainAllElasticity fits every product with sales history. Products
	// with insufficient data are skipped, not fatal.
	TrainAllElasticity(ctx context.Context) ([]dto.ModelSummary, error)
	// TrainPartPrices fits one price-trend model per component from grouped
	// price observations. Parts that fail to fit are skipped, not fatal.
	TrainPartPrices(ctx context.Context, byPart map[string][]engine.PartPricePoint) ([]dto.ModelSummary, error)
}

type trainingService struct {
	salesRepo    repository.SalesRepository
	currencyRepo repository.CurrencyRepository
	modelRepo    repository.TrainedModelRepository
	models       *store.ModelStore
	rdb          *redis.Client
	params       engine.Params
}

func NewTrainingService(
	salesRepo repository.SalesRepository,
	currencyRepo repository.CurrencyRepository,
	modelRepo repository.TrainedModelRepository,
	models *store.ModelStore,
	rdb *redis.Client,
	params engine.Params,
) TrainingService {
	return &trainingService{
		salesRepo:    salesRepo,
		currencyRepo: currencyRepo,
		modelRepo:    modelRepo,
		models:       models,
		rdb:          rdb,
		params:       params,
	}
}

// ── TrainElasticity ──────────────────────────────────────────────────────────
// Load history → pure fit → atomic store swap → persist → cache invalidate.
// A failed fit leaves the prior model (if any) completely untouched.

func (s *trainingService) TrainElasticity(ctx context.Context, productCode string) (*dto.ModelSummary, error) {
	rows, err := s.salesRepo.ListByProduct(ctx, productCode)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &engine.InsufficientDataError{Code: productCode, Reason: "no sales history on file"}
	}

	obs := make([]engine.SalesObservation, len(rows))
	for i, r := range rows {
		obs[i] = engine.SalesObservation{
			Month: r.Month,
			Price: r.Price.InexactFloat64(),
			Units: float64(r.UnitsSold),
		}
	}

	fitted, err := engine.FitElasticity(productCode, obs, s.params)
	if err != nil {
		return nil, err
	}

	trainedAt := time.Now().UTC()
	snap := s.models.ReplaceElasticity(productCode, *fitted, trainedAt)

	persisted := &model.TrainedModel{
		Kind:           model.ModelKindElasticity,
		Code:           productCode,
		FunctionalForm: engine.FormLogLog,
		Coefficient:    fitted.Elasticity,
		Intercept:      fitted.Intercept,
		FitQuality:     fitted.FitQuality,
		SampleSize:     fitted.SampleSize,
		ReferencePrice: fitted.ReferencePrice,
		Version:        snap.Version,
		TrainedAt:      trainedAt,
	}
	if err := s.modelRepo.Upsert(ctx, persisted); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, productCode)

	log.Info().
		Str("product_code", productCode).
		Float64("elasticity", fitted.Elasticity).
		Float64("fit_quality", fitted.FitQuality).
		Int("sample_size", fitted.SampleSize).
		Int("version", snap.Version).
		Msg("elasticity model trained")

	summary := elasticitySummary(fitted, snap)
	return &summary, nil
}

// ── TrainFx ──────────────────────────────────────────────────────────────────

func (s *trainingService) TrainFx(ctx context.Context) (*dto.ModelSummary, error) {
	rows, err := s.currencyRepo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &engine.InsufficientDataError{Code: model.FxModelCode, Reason: "no rate history on file"}
	}

	points := make([]engine.RatePoint, len(rows))
	for i, r := range rows {
		points[i] = engine.RatePoint{Date: r.Date, Rate: r.USDRate.InexactFloat64()}
	}

	fitted, err := engine.FitRateTrend(points, s.params)
	if err != nil {
		return nil, err
	}

	trainedAt := time.Now().UTC()
	snap := s.models.ReplaceForecast(model.FxModelCode, *fitted, trainedAt)

	lastObserved := fitted.LastObserved
	persisted := &model.TrainedModel{
		Kind:           model.ModelKindFxForecast,
		Code:           model.FxModelCode,
		FunctionalForm: engine.FormLinearTrend,
		Coefficient:    fitted.Slope,
		Intercept:      fitted.Intercept,
		FitQuality:     fitted.FitQuality,
		SampleSize:     fitted.SampleSize,
		ResidualSigma:  fitted.ResidualSigma,
		SpanDays:       fitted.SpanDays,
		LastObservedAt: &lastObserved,
		Version:        snap.Version,
		TrainedAt:      trainedAt,
	}
	if err := s.modelRepo.Upsert(ctx, persisted); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, model.FxModelCode)

	log.Info().
		Float64("slope_per_day", fitted.Slope).
		Float64("fit_quality", fitted.FitQuality).
		Int("sample_size", fitted.SampleSize).
		Int("version", snap.Version).
		Msg("fx forecast model trained")

	summary := forecastSummary(fitted, snap)
	return &summary, nil
}

// ── TrainAllElasticity ───────────────────────────────────────────────────────

func (s *trainingService) TrainAllElasticity(ctx context.Context) ([]dto.ModelSummary, error) {
	codes, err := s.salesRepo.DistinctProducts(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.ModelSummary, 0, len(codes))
	for _, code := range codes {
		summary, err := s.TrainElasticity(ctx, code)
		if err != nil {
			// Insufficient data stops this product only; other products in
			// the batch still train.
			log.Warn().Str("product_code", code).Err(err).Msg("product skipped during batch training")
			continue
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// ── TrainPartPrices ──────────────────────────────────────────────────────────
// Component price histories train straight from the feed, one model per part
// slug. There is no raw-row table behind them: the fitted parameters are the
// persisted artifact, superseded in place on the next upload.

func (s *trainingService) TrainPartPrices(ctx context.Context, byPart map[string][]engine.PartPricePoint) ([]dto.ModelSummary, error) {
	names := make([]string, 0, len(byPart))
	for name := range byPart {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]dto.ModelSummary, 0, len(names))
	for _, name := range names {
		fitted, err := engine.FitPartPriceTrend(name, byPart[name], s.params)
		if err != nil {
			log.Warn().Str("part_name", name).Err(err).Msg("part skipped during price-trend training")
			continue
		}

		trainedAt := time.Now().UTC()
		key := model.PartModelKey(fitted.PartName)
		s.models.MarkDataArrival(key, trainedAt)
		snap := s.models.ReplacePartPrice(key, *fitted, trainedAt)

		lastMonth := fitted.LastMonth
		persisted := &model.TrainedModel{
			Kind:           model.ModelKindPartPrice,
			Code:           fitted.PartName,
			FunctionalForm: engine.FormLinearTrend,
			Coefficient:    fitted.Slope,
			Intercept:      fitted.Intercept,
			FitQuality:     fitted.FitQuality,
			SampleSize:     fitted.SampleSize,
			SpanDays:       fitted.SpanDays,
			LastObservedAt: &lastMonth,
			Version:        snap.Version,
			TrainedAt:      trainedAt,
		}
		if err := s.modelRepo.Upsert(ctx, persisted); err != nil {
			return nil, err
		}
		s.invalidateCache(ctx, fitted.PartName)

		log.Info().
			Str("part_name", fitted.PartName).
			Float64("slope_per_day", fitted.Slope).
			Int("months", fitted.SampleSize).
			Int("version", snap.Version).
			Msg("part price model trained")

		summaries = append(summaries, partPriceSummary(fitted, snap))
	}
	return summaries, nil
}

// invalidateCache drops the summary cache entries — best effort, the TTL
// would expire them anyway.
func (s *trainingService) invalidateCache(ctx context.Context, code string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, ModelCacheKey(code), ModelListCacheKey).Err()
}

func elasticitySummary(m *engine.ElasticityModel, snap store.Snapshot) dto.ModelSummary {
	return dto.ModelSummary{
		Code:           m.ProductCode,
		Kind:           model.ModelKindElasticity,
		FunctionalForm: engine.FormLogLog,
		Coefficient:    m.Elasticity,
		Intercept:      m.Intercept,
		FitQuality:     m.FitQuality,
		SampleSize:     m.SampleSize,
		Version:        snap.Version,
		TrainedAt:      snap.TrainedAt,
		State:          string(snap.State),
		Flags:          m.Flags,
	}
}

func partPriceSummary(m *engine.PartPriceModel, snap store.Snapshot) dto.ModelSummary {
	return dto.ModelSummary{
		Code:           m.PartName,
		Kind:           model.ModelKindPartPrice,
		FunctionalForm: engine.FormLinearTrend,
		Coefficient:    m.Slope,
		Intercept:      m.Intercept,
		FitQuality:     m.FitQuality,
		SampleSize:     m.SampleSize,
		Version:        snap.Version,
		TrainedAt:      snap.TrainedAt,
		State:          string(snap.State),
		Flags:          m.Flags,
	}
}

func forecastSummary(m *engine.ForecastModel, snap store.Snapshot) dto.ModelSummary {
	return dto.ModelSummary{
		Code:           model.FxModelCode,
		Kind:           model.ModelKindFxForecast,
		FunctionalForm: engine.FormLinearTrend,
		Coefficient:    m.Slope,
		Intercept:      m.Intercept,
		FitQuality:     m.FitQuality,
		SampleSize:     m.SampleSize,
		Version:        snap.Version,
		TrainedAt:      snap.TrainedAt,
		State:          string(snap.State),
		Flags:          m.Flags,
	}
}
