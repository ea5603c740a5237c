package engine

// OptimizeResult is the optimizer's output for one product. Flags report
// degeneracy and margin anomalies; they never abort the recommendation path.
type OptimizeResult struct {
	Price          float64
	ExpectedDemand float64
	ExpectedProfit float64
	EffectiveCost  float64
	Confidence     float64 // the model's fit quality
	Flags          []string
}

// Optimize computes the profit-maximizing price for a fitted demand curve and
// a unit cost. When rate is non-nil the cost is converted first
// (effective_cost = cost_per_unit × rate); this is the single optional USD
// conversion, nothing more.
//
// For elastic demand (e < −1) the constant-elasticity model has the closed
// form p* = c·e/(e+1). For −1 ≤ e < 0 profit under this model increases
// without bound in price, so the optimizer falls back to a bounded grid
// search capped at PriceCeilingMultiple × the model's reference price and
// flags the result degenerate rather than reporting a fake interior optimum.
// A non-negative fitted elasticity (upward-sloping demand, almost always a
// bad fit) takes the same fallback.
func Optimize(m *ElasticityModel, costPerUnit float64, rate *float64, p Params) (*OptimizeResult, error) {
	if costPerUnit <= 0 {
		return nil, &InputValidationError{Field: "cost_per_unit", Reason: "must be positive"}
	}
	cost := costPerUnit
	if rate != nil {
		if *rate <= 0 {
			return nil, &InputValidationError{Field: "rate", Reason: "must be positive"}
		}
		cost = costPerUnit * *rate
	}

	res := &OptimizeResult{
		EffectiveCost: cost,
		Confidence:    m.FitQuality,
		Flags:         append([]string(nil), m.Flags...),
	}

	if m.Elasticity < -1 {
		res.Price = cost * m.Elasticity / (m.Elasticity + 1)
	} else {
		res.Price = boundedSearch(m, cost, p)
		res.Flags = append(res.Flags, FlagDegenerateElasticity)
	}

	res.ExpectedDemand = m.Demand(res.Price)
	res.ExpectedProfit = m.Profit(res.Price, cost)
	if res.Price < cost {
		// Reported, not clamped: an elasticity-implied negative margin is
		// information the caller must see.
		res.Flags = append(res.Flags, FlagNegativeMargin)
	}
	return res, nil
}

// boundedSearch grid-searches profit over [cost, ceiling]. When the ceiling
// sits at or below cost there is no searchable range and the ceiling itself
// is returned (the negative-margin flag is added by the caller).
func boundedSearch(m *ElasticityModel, cost float64, p Params) float64 {
	ceiling := p.PriceCeilingMultiple * m.ReferencePrice
	if ceiling <= cost {
		return ceiling
	}

	steps := p.SearchSteps
	if steps < 2 {
		steps = 2
	}
	best := cost
	bestProfit := m.Profit(cost, cost)
	width := ceiling - cost
	for i := 1; i <= steps; i++ {
		price := cost + width*float64(i)/float64(steps)
		if profit := m.Profit(price, cost); profit > bestProfit {
			bestProfit = profit
			best = price
		}
	}
	return best
}
