package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BomItem is one bill-of-materials line: a component and its quantity for a
// manufactured product. Uploading a BOM for a product replaces all of its
// previous lines in one transaction.
type BomItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductCode  string          `gorm:"not null;index"`
	PartName     string          `gorm:"not null"`
	Quantity     int             `gorm:"not null"`
	UnitPriceUSD decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CreatedAt    time.Time
}
