package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

type TrainedModelRepository interface {
	// Upsert replaces the persisted parameters for (kind, code). Rerunning a
	// training job overwrites, never accumulates.
	Upsert(ctx context.Context, m *model.TrainedModel) error
	ListAll(ctx context.Context) ([]model.TrainedModel, error)
	FindByKey(ctx context.Context, kind, code string) (*model.TrainedModel, error)
}

type trainedModelRepository struct{ db *gorm.DB }

func NewTrainedModelRepository(db *gorm.DB) TrainedModelRepository {
	return &trainedModelRepository{db: db}
}

func (r *trainedModelRepository) Upsert(ctx context.Context, m *model.TrainedModel) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "kind"}, {Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"functional_form", "coefficient", "intercept", "fit_quality",
				"sample_size", "reference_price", "residual_sigma", "span_days",
				"last_observed_at", "version", "trained_at", "updated_at",
			}),
		}).
		Create(m).Error
}

func (r *trainedModelRepository) ListAll(ctx context.Context) ([]model.TrainedModel, error) {
	var rows []model.TrainedModel
	err := r.db.WithContext(ctx).Order("kind ASC, code ASC").Find(&rows).Error
	return rows, err
}

func (r *trainedModelRepository) FindByKey(ctx context.Context, kind, code string) (*model.TrainedModel, error) {
	var row model.TrainedModel
	err := r.db.WithContext(ctx).
		Where("kind = ? AND code = ?", kind, code).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
