package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

type SalesRepository interface {
	CreateBatch(ctx context.Context, rows []model.SalesRecord) error
	ListByProduct(ctx context.Context, productCode string) ([]model.SalesRecord, error)
	DistinctProducts(ctx context.Context) ([]string, error)
	// LatestIngestTimes maps each product code to the newest CreatedAt of its
	// rows — the data-arrival watermark used for staleness on boot.
	LatestIngestTimes(ctx context.Context) (map[string]time.Time, error)
}

type salesRepository struct{ db *gorm.DB }

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) CreateBatch(ctx context.Context, rows []model.SalesRecord) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 500).Error
}

func (r *salesRepository) ListByProduct(ctx context.Context, productCode string) ([]model.SalesRecord, error) {
	var rows []model.SalesRecord
	err := r.db.WithContext(ctx).
		Where("product_code = ?", productCode).
		Order("month ASC").
		Find(&rows).Error
	return rows, err
}

func (r *salesRepository) DistinctProducts(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.SalesRecord{}).
		Distinct("product_code").
		Order("product_code ASC").
		Pluck("product_code", &codes).Error
	return codes, err
}

func (r *salesRepository) LatestIngestTimes(ctx context.Context) (map[string]time.Time, error) {
	type row struct {
		ProductCode string
		Latest      time.Time
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.SalesRecord{}).
		Select("product_code, MAX(created_at) AS latest").
		Group("product_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rows))
	for _, rr := range rows {
		out[rr.ProductCode] = rr.Latest
	}
	return out, nil
}
