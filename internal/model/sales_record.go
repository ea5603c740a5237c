package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesRecord is one monthly sales observation for a product, as ingested
// from the sales feed. Rows are append-only — the elasticity estimator reads
// the full history per product, never a mutated row.
type SalesRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Month       string          `gorm:"not null;index:idx_sales_product_month,priority:2"` // YYYY-MM
	ProductCode string          `gorm:"not null;index:idx_sales_product_month,priority:1"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UnitsSold   int             `gorm:"not null"`
	CreatedAt   time.Time
}
