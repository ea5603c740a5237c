package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

type CurrencyRepository interface {
	// CreateBatch inserts new rate observations; a date already on file is
	// left untouched (first value wins, re-uploads are idempotent).
	CreateBatch(ctx context.Context, rows []model.CurrencyRate) error
	ListOrdered(ctx context.Context) ([]model.CurrencyRate, error)
	LatestIngestTime(ctx context.Context) (*time.Time, error)
}

type currencyRepository struct{ db *gorm.DB }

func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) CreateBatch(ctx context.Context, rows []model.CurrencyRate) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "date"}}, DoNothing: true}).
		CreateInBatches(rows, 500).Error
}

func (r *currencyRepository) ListOrdered(ctx context.Context) ([]model.CurrencyRate, error) {
	var rows []model.CurrencyRate
	err := r.db.WithContext(ctx).Order("date ASC").Find(&rows).Error
	return rows, err
}

func (r *currencyRepository) LatestIngestTime(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	err := r.db.WithContext(ctx).
		Model(&model.CurrencyRate{}).
		Select("MAX(created_at)").
		Scan(&latest).Error
	return latest, err
}
