package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

type BomRepository interface {
	// ReplaceForProduct swaps a product's full BOM in one transaction.
	ReplaceForProduct(ctx context.Context, productCode string, items []model.BomItem) error
	ListByProduct(ctx context.Context, productCode string) ([]model.BomItem, error)
	DistinctProducts(ctx context.Context) ([]string, error)
}

type bomRepository struct{ db *gorm.DB }

func NewBomRepository(db *gorm.DB) BomRepository {
	return &bomRepository{db: db}
}

func (r *bomRepository) ReplaceForProduct(ctx context.Context, productCode string, items []model.BomItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_code = ?", productCode).Delete(&model.BomItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 500).Error
	})
}

func (r *bomRepository) ListByProduct(ctx context.Context, productCode string) ([]model.BomItem, error) {
	var items []model.BomItem
	err := r.db.WithContext(ctx).
		Where("product_code = ?", productCode).
		Order("part_name ASC").
		Find(&items).Error
	return items, err
}

func (r *bomRepository) DistinctProducts(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.BomItem{}).
		Distinct("product_code").
		Order("product_code ASC").
		Pluck("product_code", &codes).Error
	return codes, err
}
