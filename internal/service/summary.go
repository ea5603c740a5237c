package service

import (
	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
)

// SummaryFromRow builds the external model summary from a persisted row plus
// the store's current freshness snapshot.
func SummaryFromRow(row model.TrainedModel, snap store.Snapshot, params engine.Params) dto.ModelSummary {
	var flags []string
	switch row.Kind {
	case model.ModelKindElasticity:
		flags = elasticityFromRow(row, params).Flags
	case model.ModelKindFxForecast:
		flags = forecastFromRow(row, params).Flags
	case model.ModelKindPartPrice:
		flags = partPriceFromRow(row, params).Flags
	}
	return dto.ModelSummary{
		Code:           row.Code,
		Kind:           row.Kind,
		FunctionalForm: row.FunctionalForm,
		Coefficient:    row.Coefficient,
		Intercept:      row.Intercept,
		FitQuality:     row.FitQuality,
		SampleSize:     row.SampleSize,
		Version:        row.Version,
		TrainedAt:      row.TrainedAt,
		State:          string(snap.State),
		Flags:          flags,
	}
}
