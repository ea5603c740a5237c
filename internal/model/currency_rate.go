package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyRate is one observed local-per-USD exchange rate.
// One row per calendar date; re-uploading a date is a no-op (first value wins).
type CurrencyRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date      time.Time       `gorm:"type:date;uniqueIndex;not null"`
	USDRate   decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CreatedAt time.Time
}
