// Package engine implements the pricing/forecasting core: the demand
// elasticity estimator, the FX rate forecaster, the profit-maximizing price
// optimizer, the ensemble recommender, and BOM-based costing. Everything here
// is a pure function of its inputs — persistence and caching live elsewhere.
package engine

// Result flags attached to models, optimizer results and recommendations.
// They downgrade confidence; none of them is a failure by itself.
const (
	FlagLowConfidence        = "low-confidence"
	FlagDegenerateElasticity = "degenerate-elasticity"
	FlagNegativeMargin       = "negative-margin"
	FlagExtrapolation        = "extrapolation"
	FlagInsufficientData     = "insufficient-data"
	FlagStaleModel           = "stale-model"
)

// Functional forms recorded on fitted models. A product never mixes forms
// across training runs.
const (
	FormLogLog      = "log-log"
	FormLinearTrend = "linear-trend"
)

// Params are the engine tunables. Zero values are never used directly —
// construct via DefaultParams and override from config.
type Params struct {
	// LowFitQuality is the R² below which a model is flagged low-confidence
	// (still usable — rejection is reserved for sample-size failures).
	LowFitQuality float64
	// PriceCeilingMultiple bounds the fallback search at this multiple of the
	// model's reference (mean observed) price.
	PriceCeilingMultiple float64
	// SearchSteps is the grid resolution of the bounded fallback search.
	SearchSteps int
	// BaselineWeight is the confidence heuristic estimators (cost-plus)
	// declare for themselves, and thus their ensemble weight.
	BaselineWeight float64
	// DegenerateWeightFloor is the ensemble weight of an estimate carrying a
	// degenerate or insufficient-data flag, or declaring zero confidence.
	DegenerateWeightFloor float64
	// MaxSpanMultiple flags forecasts beyond this multiple of the observed
	// span as extrapolation-degraded.
	MaxSpanMultiple float64
}

func DefaultParams() Params {
	return Params{
		LowFitQuality:         0.1,
		PriceCeilingMultiple:  3.0,
		SearchSteps:           240,
		BaselineWeight:        0.5,
		DegenerateWeightFloor: 0.1,
		MaxSpanMultiple:       2.0,
	}
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
