package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
)

func TestHydrateStore_RebuildsModelsFromRows(t *testing.T) {
	trainedAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	lastObserved := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	modelRepo := newStubModelRepo()
	_ = modelRepo.Upsert(context.Background(), &model.TrainedModel{
		Kind: model.ModelKindElasticity, Code: "P1",
		FunctionalForm: engine.FormLogLog,
		Coefficient:    -2.1, Intercept: 6.9, FitQuality: 0.85,
		SampleSize: 14, ReferencePrice: 22.5,
		Version: 3, TrainedAt: trainedAt,
	})
	_ = modelRepo.Upsert(context.Background(), &model.TrainedModel{
		Kind: model.ModelKindFxForecast, Code: model.FxModelCode,
		FunctionalForm: engine.FormLinearTrend,
		Coefficient:    0.05, Intercept: 1.2, FitQuality: 0.7,
		SampleSize: 30, ResidualSigma: 0.02, SpanDays: 60,
		LastObservedAt: &lastObserved,
		Version:        5, TrainedAt: trainedAt,
	})

	models := store.New()
	err := HydrateStore(context.Background(), modelRepo, newStubSalesRepo(), &stubCurrencyRepo{}, models, engine.DefaultParams())
	require.NoError(t, err)

	p1 := models.Get("P1")
	require.NotNil(t, p1.Elasticity)
	assert.Equal(t, -2.1, p1.Elasticity.Elasticity)
	assert.Equal(t, 3, p1.Version)
	assert.Equal(t, store.StateTrained, p1.State)

	fx := models.Get(model.FxModelCode)
	require.NotNil(t, fx.Forecast)
	assert.Equal(t, 0.05, fx.Forecast.Slope)
	assert.Equal(t, 60, fx.Forecast.SpanDays)
	assert.Equal(t, 5, fx.Version)

	// a hydrated forecaster must project exactly like the live one
	f, err := fx.Forecast.Predict(10, engine.DefaultParams())
	require.NoError(t, err)
	assert.InDelta(t, 1.2+0.05*70, f.Rate, 1e-9)
}

func TestHydrateStore_StalenessFromIngestWatermarks(t *testing.T) {
	trainedAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	modelRepo := newStubModelRepo()
	_ = modelRepo.Upsert(context.Background(), &model.TrainedModel{
		Kind: model.ModelKindElasticity, Code: "P1",
		Coefficient: -2, FitQuality: 0.8, SampleSize: 10,
		Version: 1, TrainedAt: trainedAt,
	})

	// sales for P1 arrived after the fit
	salesRepo := newStubSalesRepo()
	_ = salesRepo.CreateBatch(context.Background(), []model.SalesRecord{{
		Month: "2025-05", ProductCode: "P1",
		Price: decimal.NewFromInt(10), UnitsSold: 5,
		CreatedAt: trainedAt.Add(time.Hour),
	}})

	models := store.New()
	err := HydrateStore(context.Background(), modelRepo, salesRepo, &stubCurrencyRepo{}, models, engine.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, store.StateStale, models.Get("P1").State)
}

func TestHydrateStore_RecomputesLowConfidenceFlag(t *testing.T) {
	modelRepo := newStubModelRepo()
	_ = modelRepo.Upsert(context.Background(), &model.TrainedModel{
		Kind: model.ModelKindElasticity, Code: "P1",
		Coefficient: -0.4, FitQuality: 0.05, SampleSize: 6,
		Version: 1, TrainedAt: time.Now().UTC(),
	})

	models := store.New()
	err := HydrateStore(context.Background(), modelRepo, newStubSalesRepo(), &stubCurrencyRepo{}, models, engine.DefaultParams())
	require.NoError(t, err)

	snap := models.Get("P1")
	require.NotNil(t, snap.Elasticity)
	assert.Contains(t, snap.Elasticity.Flags, engine.FlagLowConfidence)
}

func TestHydrateStore_RestoresPartPriceModels(t *testing.T) {
	trainedAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	modelRepo := newStubModelRepo()
	_ = modelRepo.Upsert(context.Background(), &model.TrainedModel{
		Kind: model.ModelKindPartPrice, Code: "resistor",
		FunctionalForm: engine.FormLinearTrend,
		Coefficient:    0.001, Intercept: 0.02, FitQuality: 0.9,
		SampleSize: 4, SpanDays: 90,
		LastObservedAt: &lastMonth,
		Version:        2, TrainedAt: trainedAt,
	})

	models := store.New()
	err := HydrateStore(context.Background(), modelRepo, newStubSalesRepo(), &stubCurrencyRepo{}, models, engine.DefaultParams())
	require.NoError(t, err)

	snap := models.Get(model.PartModelKey("resistor"))
	require.NotNil(t, snap.PartPrice)
	assert.Equal(t, 2, snap.Version)
	assert.Equal(t, lastMonth, snap.PartPrice.LastMonth)

	// next month = May 1, 120 days past the hydrated first month
	assert.InDelta(t, 0.02+0.001*120, snap.PartPrice.PredictNextMonth(), 1e-9)
}
