package engine

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// PartPricePoint is one observed USD unit price for a component.
type PartPricePoint struct {
	Date         time.Time
	UnitPriceUSD float64
}

// PartPriceModel is a fitted linear trend over a component's monthly mean
// USD unit price: price(t) = Intercept + Slope·t, with t in days since the
// first observed month. Immutable once fitted, like the other models.
type PartPriceModel struct {
	PartName   string // slug, the persistence/store key
	Slope      float64
	Intercept  float64
	FitQuality float64
	SampleSize int // distinct months, not raw rows
	FirstMonth time.Time
	LastMonth  time.Time
	SpanDays   int
	Flags      []string
}

var partSlugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// PartSlug normalizes a part name into the key models are stored under, so
// "LM358 Op-Amp" and "lm358 op amp" resolve to the same model.
func PartSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = partSlugStrip.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "component"
	}
	return slug
}

// FitPartPriceTrend fits a component's price trend. Observations are bucketed
// into calendar months and averaged before fitting, so a burst of quotes in
// one month counts once. A single observed month yields a flat model at that
// month's mean — components quoted once still get a carry-forward price —
// reported at fit quality 0 with a low-confidence flag, as is a two-month fit.
func FitPartPriceTrend(partName string, points []PartPricePoint, p Params) (*PartPriceModel, error) {
	if len(points) == 0 {
		return nil, &InsufficientDataError{Code: PartSlug(partName), Reason: "no price observations"}
	}
	for _, pt := range points {
		if pt.UnitPriceUSD < 0 {
			return nil, &InputValidationError{Field: "unit_price_usd", Reason: "must be non-negative"}
		}
	}

	type bucket struct {
		sum   float64
		count int
	}
	months := make(map[time.Time]*bucket)
	for _, pt := range points {
		m := monthStart(pt.Date)
		b := months[m]
		if b == nil {
			b = &bucket{}
			months[m] = b
		}
		b.sum += pt.UnitPriceUSD
		b.count++
	}

	keys := make([]time.Time, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	first := keys[0]
	last := keys[len(keys)-1]

	m := &PartPriceModel{
		PartName:   PartSlug(partName),
		SampleSize: len(keys),
		FirstMonth: first,
		LastMonth:  last,
		SpanDays:   int(daysBetween(first, last)),
	}

	if len(keys) == 1 {
		b := months[first]
		m.Intercept = b.sum / float64(b.count)
		m.Flags = append(m.Flags, FlagLowConfidence)
		return m, nil
	}

	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, k := range keys {
		b := months[k]
		xs[i] = daysBetween(first, k)
		ys[i] = b.sum / float64(b.count)
	}
	slope, intercept, r2 := leastSquares(xs, ys)

	m.Slope = slope
	m.Intercept = intercept
	m.FitQuality = clamp01(r2)
	if len(keys) == 2 {
		m.FitQuality = 0
		m.Flags = append(m.Flags, FlagLowConfidence)
	} else if m.FitQuality < p.LowFitQuality {
		m.Flags = append(m.Flags, FlagLowConfidence)
	}
	return m, nil
}

// PredictNextMonth projects the USD unit price one month past the last
// observed month. The projection of a falling trend can cross zero; callers
// decide whether a non-positive price is usable.
func (m *PartPriceModel) PredictNextMonth() float64 {
	next := m.LastMonth.AddDate(0, 1, 0)
	t := daysBetween(m.FirstMonth, next)
	return m.Intercept + m.Slope*t
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
