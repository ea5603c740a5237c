package model

import (
	"time"

	"github.com/google/uuid"
)

// Model kinds persisted in trained_models.
const (
	ModelKindElasticity = "elasticity"
	ModelKindFxForecast = "fx_forecast"
	ModelKindPartPrice  = "part_price"
)

// FxModelCode is the store/persistence key for the single USD rate forecaster.
const FxModelCode = "USD"

// PartModelKey is the store key for a component price model. Parts live in
// the same store as products; the prefix keeps a part slug from colliding
// with a product code.
func PartModelKey(slug string) string { return "part:" + slug }

// TrainedModel persists one fitted model's parameters so the in-memory store
// survives restarts. Rows are superseded in place by retrains (upsert on
// kind+code with a bumped version), never accumulated.
// Each era of a product uses exactly one functional form; mixing forms across
// training runs for the same code is rejected at fit time.
type TrainedModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind           string    `gorm:"not null;uniqueIndex:idx_trained_models_kind_code,priority:1"`
	Code           string    `gorm:"not null;uniqueIndex:idx_trained_models_kind_code,priority:2"`
	FunctionalForm string    `gorm:"not null"` // log-log | linear-trend
	Coefficient    float64   `gorm:"not null"` // elasticity e, or trend slope per day
	Intercept      float64   `gorm:"not null"`
	FitQuality     float64   `gorm:"not null"`
	SampleSize     int       `gorm:"not null"`
	ReferencePrice float64   // elasticity only: mean observed price at fit time
	ResidualSigma  float64   // fx only: residual std dev for interval bands
	SpanDays       int       // fx only: days between first and last observation
	LastObservedAt *time.Time
	Version        int       `gorm:"not null;default:1"`
	TrainedAt      time.Time `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
