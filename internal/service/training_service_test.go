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

func seedSales(repo *stubSalesRepo, code string, points ...[2]float64) {
	rows := make([]model.SalesRecord, len(points))
	for i, pt := range points {
		rows[i] = model.SalesRecord{
			Month:       time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			ProductCode: code,
			Price:       decimal.NewFromFloat(pt[0]),
			UnitsSold:   int(pt[1]),
			CreatedAt:   time.Now().UTC(),
		}
	}
	_ = repo.CreateBatch(context.Background(), rows)
}

func seedRates(repo *stubCurrencyRepo, rates ...float64) {
	rows := make([]model.CurrencyRate, len(rates))
	for i, rate := range rates {
		rows[i] = model.CurrencyRate{
			Date:      time.Date(2025, 1, i+1, 0, 0, 0, 0, time.UTC),
			USDRate:   decimal.NewFromFloat(rate),
			CreatedAt: time.Now().UTC(),
		}
	}
	_ = repo.CreateBatch(context.Background(), rows)
}

func buildTrainingSvc() (TrainingService, *stubSalesRepo, *stubCurrencyRepo, *stubModelRepo, *store.ModelStore) {
	salesRepo := newStubSalesRepo()
	currencyRepo := &stubCurrencyRepo{}
	modelRepo := newStubModelRepo()
	models := store.New()
	svc := NewTrainingService(salesRepo, currencyRepo, modelRepo, models, nil, engine.DefaultParams())
	return svc, salesRepo, currencyRepo, modelRepo, models
}

// ── TrainElasticity ───────────────────────────────────────────────────────────

func TestTrainElasticity_InstallsAndPersists(t *testing.T) {
	svc, salesRepo, _, modelRepo, models := buildTrainingSvc()
	seedSales(salesRepo, "P1", [2]float64{10, 120}, [2]float64{12, 90}, [2]float64{14, 70})

	summary, err := svc.TrainElasticity(context.Background(), "P1")
	require.NoError(t, err)

	assert.Equal(t, "P1", summary.Code)
	assert.Equal(t, model.ModelKindElasticity, summary.Kind)
	assert.Equal(t, engine.FormLogLog, summary.FunctionalForm)
	assert.Less(t, summary.Coefficient, 0.0)
	assert.Equal(t, 1, summary.Version)
	assert.Equal(t, string(store.StateTrained), summary.State)

	snap := models.Get("P1")
	require.NotNil(t, snap.Elasticity)
	assert.Equal(t, summary.Coefficient, snap.Elasticity.Elasticity)

	persisted, err := modelRepo.FindByKey(context.Background(), model.ModelKindElasticity, "P1")
	require.NoError(t, err)
	assert.Equal(t, summary.Coefficient, persisted.Coefficient)
	assert.Equal(t, 1, persisted.Version)
}

func TestTrainElasticity_RetrainIsIdempotentOnSameData(t *testing.T) {
	svc, salesRepo, _, _, _ := buildTrainingSvc()
	seedSales(salesRepo, "P1", [2]float64{10, 120}, [2]float64{12, 90}, [2]float64{14, 70})

	first, err := svc.TrainElasticity(context.Background(), "P1")
	require.NoError(t, err)
	second, err := svc.TrainElasticity(context.Background(), "P1")
	require.NoError(t, err)

	// identical input, identical parameters — only version and timestamp move
	assert.Equal(t, first.Coefficient, second.Coefficient)
	assert.Equal(t, first.Intercept, second.Intercept)
	assert.Equal(t, first.FitQuality, second.FitQuality)
	assert.Equal(t, first.Version+1, second.Version)
}

func TestTrainElasticity_NoHistory(t *testing.T) {
	svc, _, _, _, models := buildTrainingSvc()

	_, err := svc.TrainElasticity(context.Background(), "GHOST")

	var insufficient *engine.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, store.StateUntrained, models.Get("GHOST").State)
}

func TestTrainElasticity_FailedFitLeavesPriorModel(t *testing.T) {
	svc, salesRepo, _, _, models := buildTrainingSvc()
	seedSales(salesRepo, "P1", [2]float64{10, 120}, [2]float64{12, 90})

	_, err := svc.TrainElasticity(context.Background(), "P1")
	require.NoError(t, err)
	before := models.Get("P1")

	// new data at a single price point makes the next fit unidentifiable
	salesRepo.records["P1"] = nil
	seedSales(salesRepo, "P1", [2]float64{10, 100}, [2]float64{10, 95})

	_, err = svc.TrainElasticity(context.Background(), "P1")
	var insufficient *engine.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)

	after := models.Get("P1")
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Elasticity.Elasticity, after.Elasticity.Elasticity)
}

// ── TrainFx ───────────────────────────────────────────────────────────────────

func TestTrainFx_InstallsUnderReservedCode(t *testing.T) {
	svc, _, currencyRepo, modelRepo, models := buildTrainingSvc()
	seedRates(currencyRepo, 1.00, 1.10, 1.20)

	summary, err := svc.TrainFx(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.FxModelCode, summary.Code)
	assert.Equal(t, model.ModelKindFxForecast, summary.Kind)
	assert.Equal(t, engine.FormLinearTrend, summary.FunctionalForm)
	assert.InDelta(t, 0.10, summary.Coefficient, 1e-9)

	require.NotNil(t, models.Get(model.FxModelCode).Forecast)

	persisted, err := modelRepo.FindByKey(context.Background(), model.ModelKindFxForecast, model.FxModelCode)
	require.NoError(t, err)
	assert.Equal(t, 2, persisted.SpanDays)
	require.NotNil(t, persisted.LastObservedAt)
}

func TestTrainFx_NoRates(t *testing.T) {
	svc, _, _, _, _ := buildTrainingSvc()

	_, err := svc.TrainFx(context.Background())
	var insufficient *engine.InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
}

// ── TrainAllElasticity ────────────────────────────────────────────────────────

func TestTrainAllElasticity_SkipsInsufficientProducts(t *testing.T) {
	svc, salesRepo, _, _, models := buildTrainingSvc()
	seedSales(salesRepo, "P1", [2]float64{10, 120}, [2]float64{12, 90})
	seedSales(salesRepo, "P2", [2]float64{10, 100}) // one price point, unfittable
	seedSales(salesRepo, "P3", [2]float64{20, 50}, [2]float64{25, 35})

	summaries, err := svc.TrainAllElasticity(context.Background())
	require.NoError(t, err)

	codes := make([]string, len(summaries))
	for i, s := range summaries {
		codes[i] = s.Code
	}
	assert.ElementsMatch(t, []string{"P1", "P3"}, codes)
	assert.Equal(t, store.StateUntrained, models.Get("P2").State)
}

// ── TrainPartPrices ───────────────────────────────────────────────────────────

func TestTrainPartPrices_InstallsAndPersistsPerPart(t *testing.T) {
	svc, _, _, modelRepo, models := buildTrainingSvc()

	byPart := map[string][]engine.PartPricePoint{
		"LM358 Op-Amp": {
			{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), UnitPriceUSD: 0.50},
			{Date: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), UnitPriceUSD: 0.55},
			{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), UnitPriceUSD: 0.60},
		},
		"Resistor": {
			{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), UnitPriceUSD: 0.02},
		},
	}

	summaries, err := svc.TrainPartPrices(context.Background(), byPart)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Sorted by part name; codes are slugs, not raw names.
	assert.Equal(t, "lm358-op-amp", summaries[0].Code)
	assert.Equal(t, "resistor", summaries[1].Code)
	assert.Equal(t, model.ModelKindPartPrice, summaries[0].Kind)
	assert.Equal(t, string(store.StateTrained), summaries[0].State)

	snap := models.Get(model.PartModelKey("lm358-op-amp"))
	require.NotNil(t, snap.PartPrice)
	assert.Greater(t, snap.PartPrice.Slope, 0.0)

	persisted, err := modelRepo.FindByKey(context.Background(), model.ModelKindPartPrice, "lm358-op-amp")
	require.NoError(t, err)
	assert.Equal(t, engine.FormLinearTrend, persisted.FunctionalForm)
	assert.Equal(t, 3, persisted.SampleSize)
}

func TestTrainPartPrices_RetrainSupersedesInPlace(t *testing.T) {
	svc, _, _, modelRepo, models := buildTrainingSvc()
	byPart := map[string][]engine.PartPricePoint{
		"Resistor": {{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), UnitPriceUSD: 0.02}},
	}

	_, err := svc.TrainPartPrices(context.Background(), byPart)
	require.NoError(t, err)
	_, err = svc.TrainPartPrices(context.Background(), byPart)
	require.NoError(t, err)

	snap := models.Get(model.PartModelKey("resistor"))
	assert.Equal(t, 2, snap.Version)

	rows, err := modelRepo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTrainPartPrices_SkipsUnfittableParts(t *testing.T) {
	svc, _, _, _, models := buildTrainingSvc()
	byPart := map[string][]engine.PartPricePoint{
		"Bad":      {{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), UnitPriceUSD: -1}},
		"Resistor": {{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), UnitPriceUSD: 0.02}},
	}

	summaries, err := svc.TrainPartPrices(context.Background(), byPart)
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "resistor", summaries[0].Code)
	assert.Equal(t, store.StateUntrained, models.Get(model.PartModelKey("bad")).State)
}
