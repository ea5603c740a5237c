package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate for the pricing tables. The schema is small and append-mostly,
// so AutoMigrate is the whole migration story here.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.BomItem{},
		&model.SalesRecord{},
		&model.CurrencyRate{},
		&model.TrainedModel{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}
