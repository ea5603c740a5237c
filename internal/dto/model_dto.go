package dto

import "time"

// ModelSummary is the external view of one trained model.
type ModelSummary struct {
	Code           string    `json:"code"`
	Kind           string    `json:"kind"` // elasticity | fx_forecast | part_price
	FunctionalForm string    `json:"functional_form"`
	Coefficient    float64   `json:"coefficient"`
	Intercept      float64   `json:"intercept"`
	FitQuality     float64   `json:"fit_quality"`
	SampleSize     int       `json:"sample_size"`
	Version        int       `json:"version"`
	TrainedAt      time.Time `json:"trained_at"`
	State          string    `json:"state"` // untrained | trained | stale
	Flags          []string  `json:"flags,omitempty"`
}

// ModelListResponse wraps the full model inventory.
type ModelListResponse struct {
	Models []ModelSummary `json:"models"`
	Total  int            `json:"total"`
}

// TrainRequest names the product to (re)train. The FX forecaster has a
// single model and takes no body.
type TrainRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
}

// PartTrainSummary reports a component price-history upload: the rows read,
// the per-part models trained from them, and the rows rejected on the way.
type PartTrainSummary struct {
	RowsImported int            `json:"rows_imported"`
	Models       []ModelSummary `json:"models"`
	RowErrors    []string       `json:"row_errors,omitempty"`
}
