package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
)

// HydrateStore seeds the in-memory model store from persisted parameters and
// data-arrival watermarks at boot, so models survive restarts and staleness
// is judged against the real ingest history, not process uptime.
func HydrateStore(
	ctx context.Context,
	modelRepo repository.TrainedModelRepository,
	salesRepo repository.SalesRepository,
	currencyRepo repository.CurrencyRepository,
	models *store.ModelStore,
	params engine.Params,
) error {
	rows, err := modelRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	entries := make(map[string]store.Entry, len(rows))
	for _, row := range rows {
		switch row.Kind {
		case model.ModelKindElasticity:
			m := elasticityFromRow(row, params)
			entries[row.Code] = store.Entry{Elasticity: m, Version: row.Version, TrainedAt: row.TrainedAt}
		case model.ModelKindFxForecast:
			m := forecastFromRow(row, params)
			entries[model.FxModelCode] = store.Entry{Forecast: m, Version: row.Version, TrainedAt: row.TrainedAt}
		case model.ModelKindPartPrice:
			m := partPriceFromRow(row, params)
			entries[model.PartModelKey(row.Code)] = store.Entry{PartPrice: m, Version: row.Version, TrainedAt: row.TrainedAt}
		default:
			log.Warn().Str("kind", row.Kind).Str("code", row.Code).Msg("unknown persisted model kind, skipped")
		}
	}

	arrivals, err := salesRepo.LatestIngestTimes(ctx)
	if err != nil {
		return err
	}
	if latest, err := currencyRepo.LatestIngestTime(ctx); err != nil {
		return err
	} else if latest != nil {
		arrivals[model.FxModelCode] = *latest
	}

	models.Hydrate(entries, arrivals)
	log.Info().Int("models", len(entries)).Msg("model store hydrated")
	return nil
}

// Flags are derived state and are recomputed on load rather than persisted.

func elasticityFromRow(row model.TrainedModel, params engine.Params) *engine.ElasticityModel {
	m := &engine.ElasticityModel{
		ProductCode:    row.Code,
		Elasticity:     row.Coefficient,
		Intercept:      row.Intercept,
		FitQuality:     row.FitQuality,
		SampleSize:     row.SampleSize,
		ReferencePrice: row.ReferencePrice,
	}
	if m.FitQuality < params.LowFitQuality {
		m.Flags = append(m.Flags, engine.FlagLowConfidence)
	}
	return m
}

func partPriceFromRow(row model.TrainedModel, params engine.Params) *engine.PartPriceModel {
	var last time.Time
	if row.LastObservedAt != nil {
		last = *row.LastObservedAt
	}
	m := &engine.PartPriceModel{
		PartName:   row.Code,
		Slope:      row.Coefficient,
		Intercept:  row.Intercept,
		FitQuality: row.FitQuality,
		SampleSize: row.SampleSize,
		FirstMonth: last.AddDate(0, 0, -row.SpanDays),
		LastMonth:  last,
		SpanDays:   row.SpanDays,
	}
	if m.SampleSize <= 2 || m.FitQuality < params.LowFitQuality {
		m.Flags = append(m.Flags, engine.FlagLowConfidence)
	}
	return m
}

func forecastFromRow(row model.TrainedModel, params engine.Params) *engine.ForecastModel {
	var last time.Time
	if row.LastObservedAt != nil {
		last = *row.LastObservedAt
	}
	m := &engine.ForecastModel{
		Slope:         row.Coefficient,
		Intercept:     row.Intercept,
		FitQuality:    row.FitQuality,
		ResidualSigma: row.ResidualSigma,
		SampleSize:    row.SampleSize,
		FirstObserved: last.AddDate(0, 0, -row.SpanDays),
		LastObserved:  last,
		SpanDays:      row.SpanDays,
	}
	if m.SampleSize == 2 || m.FitQuality < params.LowFitQuality {
		m.Flags = append(m.Flags, engine.FlagLowConfidence)
	}
	return m
}
