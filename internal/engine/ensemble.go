package engine

import "sort"

// Estimate is one estimator's price suggestion offered to the ensemble.
type Estimate struct {
	Method     string
	Price      float64
	Confidence float64
	Flags      []string
}

// Recommendation is the blended, terminal artifact of a pricing request.
// It is created fresh per request and never feeds back into model state.
type Recommendation struct {
	ProductCode     string
	Price           float64
	ExpectedDemand  float64
	ExpectedProfit  float64
	MethodBreakdown map[string]float64
	Confidence      float64
	Warnings        []string
}

// WeightFn maps an estimate to its blending weight. Keeping this pluggable
// means adding an estimator never touches the blend itself.
type WeightFn func(Estimate) float64

// ConfidenceWeight is the default strategy: weight equals declared
// confidence, with a floor for estimates flagged degenerate or insufficient
// and for estimates whose declared confidence is zero (an R²-of-zero fit is
// no more trustworthy than a degenerate one; graceful degradation — it stays
// in the blend, diminished). Heuristic estimators such as cost-plus declare
// the configured baseline as their confidence, so a zero here is always a
// genuinely worthless fit, never an unset field.
func ConfidenceWeight(p Params) WeightFn {
	return func(e Estimate) float64 {
		if hasFlag(e.Flags, FlagDegenerateElasticity) || hasFlag(e.Flags, FlagInsufficientData) {
			return p.DegenerateWeightFloor
		}
		if e.Confidence <= 0 {
			return p.DegenerateWeightFloor
		}
		return e.Confidence
	}
}

// Blend combines estimates into a single weighted recommendation. All flags
// carried by contributing estimates surface as warnings; every contributing
// method appears in the breakdown for auditability. An empty estimate set is
// the only hard failure (ErrNoEstimate).
func Blend(productCode string, estimates []Estimate, weigh WeightFn) (*Recommendation, error) {
	if len(estimates) == 0 {
		return nil, ErrNoEstimate
	}

	breakdown := make(map[string]float64, len(estimates))
	seen := make(map[string]struct{})
	var warnings []string
	var priceSum, confSum, weightSum float64

	for _, e := range estimates {
		w := weigh(e)
		if w <= 0 {
			w = 0
		}
		breakdown[e.Method] = e.Price
		priceSum += w * e.Price
		confSum += w * e.Confidence
		weightSum += w
		for _, f := range e.Flags {
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				warnings = append(warnings, f)
			}
		}
	}
	if weightSum == 0 {
		return nil, ErrNoEstimate
	}
	sort.Strings(warnings)

	return &Recommendation{
		ProductCode:     productCode,
		Price:           priceSum / weightSum,
		MethodBreakdown: breakdown,
		Confidence:      clamp01(confSum / weightSum),
		Warnings:        warnings,
	}, nil
}
