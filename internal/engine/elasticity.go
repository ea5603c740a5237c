package engine

import (
	"math"
)

// SalesObservation is one historical price/demand point for a single product.
// Values are already validated at ingestion: price > 0, units >= 0.
type SalesObservation struct {
	Month string // YYYY-MM, informational only
	Price float64
	Units float64
}

// ElasticityModel is a fitted constant-elasticity demand curve for one
// product: ln(units) = Intercept + Elasticity·ln(price), i.e.
// demand(p) = exp(Intercept)·p^Elasticity. Immutable once fitted — a retrain
// produces a new value, it never mutates an old one.
type ElasticityModel struct {
	ProductCode    string
	Elasticity     float64
	Intercept      float64
	FitQuality     float64 // R² in [0,1]
	SampleSize     int
	ReferencePrice float64 // mean observed price, anchors the fallback search
	Flags          []string
}

// Demand evaluates the fitted curve at a price.
func (m *ElasticityModel) Demand(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return math.Exp(m.Intercept) * math.Pow(price, m.Elasticity)
}

// Profit evaluates (price − cost) × demand(price) under the fitted curve.
func (m *ElasticityModel) Profit(price, cost float64) float64 {
	return (price - cost) * m.Demand(price)
}

// FitElasticity runs an ordinary least-squares fit of ln(units) against
// ln(price) over one product's history.
//
// Zero-demand observations carry no signal for the log fit and are skipped.
// After skipping, fewer than two distinct price points means the slope is not
// identifiable and the fit fails with InsufficientDataError. A low R² does
// not fail the fit — the model is flagged low-confidence instead.
//
// The fit is deterministic: identical input yields bit-for-bit identical
// coefficients.
func FitElasticity(productCode string, obs []SalesObservation, p Params) (*ElasticityModel, error) {
	var xs, ys []float64
	var priceSum float64
	distinct := make(map[float64]struct{})

	for _, o := range obs {
		if o.Price <= 0 {
			return nil, &InputValidationError{Field: "price", Reason: "must be positive"}
		}
		if o.Units < 0 {
			return nil, &InputValidationError{Field: "units_sold", Reason: "must be non-negative"}
		}
		if o.Units == 0 {
			continue
		}
		xs = append(xs, math.Log(o.Price))
		ys = append(ys, math.Log(o.Units))
		priceSum += o.Price
		distinct[o.Price] = struct{}{}
	}

	if len(xs) == 0 {
		return nil, &InsufficientDataError{Code: productCode, Reason: "no demand signal (all units_sold are zero)"}
	}
	if len(distinct) < 2 {
		return nil, &InsufficientDataError{Code: productCode, Reason: "needs at least 2 distinct price points"}
	}

	slope, intercept, r2 := leastSquares(xs, ys)

	m := &ElasticityModel{
		ProductCode:    productCode,
		Elasticity:     slope,
		Intercept:      intercept,
		FitQuality:     clamp01(r2),
		SampleSize:     len(xs),
		ReferencePrice: priceSum / float64(len(xs)),
	}
	if m.FitQuality < p.LowFitQuality {
		m.Flags = append(m.Flags, FlagLowConfidence)
	}
	return m, nil
}

// leastSquares fits y = intercept + slope·x and returns (slope, intercept, R²).
// Callers guarantee len(xs) == len(ys) >= 2 with at least two distinct xs.
func leastSquares(xs, ys []float64) (slope, intercept, r2 float64) {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	slope = sxy / sxx
	intercept = meanY - slope*meanX

	var ssRes, ssTot float64
	for i := range xs {
		pred := intercept + slope*xs[i]
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	if ssTot == 0 {
		// Flat response: the fit explains everything or nothing. Treat a
		// perfect-residual fit as 1, anything else as 0.
		if ssRes == 0 {
			return slope, intercept, 1
		}
		return slope, intercept, 0
	}
	return slope, intercept, 1 - ssRes/ssTot
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
