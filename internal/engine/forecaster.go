package engine

import (
	"math"
	"sort"
	"time"
)

// zScore95 is the two-sided 95% normal quantile used for interval bands.
const zScore95 = 1.96

// RatePoint is one observed local-per-USD exchange rate.
type RatePoint struct {
	Date time.Time
	Rate float64
}

// ForecastModel is a fitted linear trend over the rate series:
// rate(t) = Intercept + Slope·t, with t in days since the first observation.
// Same immutability discipline as ElasticityModel.
type ForecastModel struct {
	Slope         float64 // per day
	Intercept     float64
	FitQuality    float64 // R², forced to 0 for a two-point fit
	ResidualSigma float64
	SampleSize    int
	FirstObserved time.Time
	LastObserved  time.Time
	SpanDays      int
	Flags         []string
}

// RateForecast is a point projection with simple 95% bands.
type RateForecast struct {
	Rate  float64
	Low   float64
	High  float64
	Flags []string
}

// FitRateTrend fits the linear trend over a rate series. The series is
// re-sorted by date if needed; at least two observations on distinct dates
// are required. With
// exactly two points the trend is the straight line between them and the fit
// quality is reported as 0 with a low-confidence flag — a trivially perfect
// R² on two points is not evidence of anything.
func FitRateTrend(points []RatePoint, p Params) (*ForecastModel, error) {
	for _, pt := range points {
		if pt.Rate <= 0 {
			return nil, &InputValidationError{Field: "usd_rate", Reason: "must be positive"}
		}
	}
	if len(points) < 2 {
		return nil, &InsufficientDataError{Code: "USD", Reason: "needs at least 2 rate observations"}
	}

	sorted := make([]RatePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	distinct := 1
	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Date.Equal(sorted[i-1].Date) {
			distinct++
		}
	}
	if distinct < 2 {
		// All observations on one date: zero variance in t, no trend to fit.
		return nil, &InsufficientDataError{Code: "USD", Reason: "needs observations on at least 2 distinct dates"}
	}

	base := sorted[0].Date
	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, pt := range sorted {
		xs[i] = daysBetween(base, pt.Date)
		ys[i] = pt.Rate
	}

	slope, intercept, r2 := leastSquares(xs, ys)

	var ssRes float64
	for i := range xs {
		d := ys[i] - (intercept + slope*xs[i])
		ssRes += d * d
	}
	dof := len(xs) - 2
	sigma := 0.0
	if dof > 0 {
		sigma = math.Sqrt(ssRes / float64(dof))
	}

	m := &ForecastModel{
		Slope:         slope,
		Intercept:     intercept,
		FitQuality:    clamp01(r2),
		ResidualSigma: sigma,
		SampleSize:    len(sorted),
		FirstObserved: base,
		LastObserved:  sorted[len(sorted)-1].Date,
		SpanDays:      int(daysBetween(base, sorted[len(sorted)-1].Date)),
	}
	if len(sorted) == 2 {
		m.FitQuality = 0
		m.Flags = append(m.Flags, FlagLowConfidence)
	} else if m.FitQuality < p.LowFitQuality {
		m.Flags = append(m.Flags, FlagLowConfidence)
	}
	return m, nil
}

// Predict extrapolates the trend horizonDays past the last observation.
// Horizons beyond MaxSpanMultiple × the observed span still return the
// projection, flagged as extrapolation-degraded.
func (m *ForecastModel) Predict(horizonDays int, p Params) (RateForecast, error) {
	if horizonDays <= 0 {
		return RateForecast{}, &InputValidationError{Field: "horizon", Reason: "must be positive"}
	}

	t := float64(m.SpanDays) + float64(horizonDays)
	rate := m.Intercept + m.Slope*t
	margin := zScore95 * m.ResidualSigma

	f := RateForecast{
		Rate:  rate,
		Low:   rate - margin,
		High:  rate + margin,
		Flags: append([]string(nil), m.Flags...),
	}
	maxHorizon := p.MaxSpanMultiple * float64(m.SpanDays)
	if float64(horizonDays) > maxHorizon {
		f.Flags = append(f.Flags, FlagExtrapolation)
	}
	return f, nil
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
