package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubSalesRepo is an in-memory SalesRepository for testing.
type stubSalesRepo struct {
	records map[string][]model.SalesRecord
}

func newStubSalesRepo() *stubSalesRepo {
	return &stubSalesRepo{records: make(map[string][]model.SalesRecord)}
}

func (r *stubSalesRepo) CreateBatch(_ context.Context, rows []model.SalesRecord) error {
	for _, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		r.records[row.ProductCode] = append(r.records[row.ProductCode], row)
	}
	return nil
}

func (r *stubSalesRepo) ListByProduct(_ context.Context, productCode string) ([]model.SalesRecord, error) {
	return r.records[productCode], nil
}

func (r *stubSalesRepo) DistinctProducts(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(r.records))
	for code := range r.records {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *stubSalesRepo) LatestIngestTimes(_ context.Context) (map[string]time.Time, error) {
	latest := make(map[string]time.Time)
	for code, rows := range r.records {
		for _, row := range rows {
			if row.CreatedAt.After(latest[code]) {
				latest[code] = row.CreatedAt
			}
		}
	}
	return latest, nil
}

var _ repository.SalesRepository = (*stubSalesRepo)(nil)

// stubCurrencyRepo keeps one rate per date, first value wins.
type stubCurrencyRepo struct {
	rows []model.CurrencyRate
}

func (r *stubCurrencyRepo) CreateBatch(_ context.Context, rows []model.CurrencyRate) error {
	for _, row := range rows {
		if r.hasDate(row.Date) {
			continue
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		r.rows = append(r.rows, row)
	}
	return nil
}

func (r *stubCurrencyRepo) hasDate(date time.Time) bool {
	for _, row := range r.rows {
		if row.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (r *stubCurrencyRepo) ListOrdered(_ context.Context) ([]model.CurrencyRate, error) {
	out := make([]model.CurrencyRate, len(r.rows))
	copy(out, r.rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *stubCurrencyRepo) LatestIngestTime(_ context.Context) (*time.Time, error) {
	var latest *time.Time
	for i := range r.rows {
		if latest == nil || r.rows[i].CreatedAt.After(*latest) {
			latest = &r.rows[i].CreatedAt
		}
	}
	return latest, nil
}

var _ repository.CurrencyRepository = (*stubCurrencyRepo)(nil)

// stubBomRepo swaps full BOMs per product, like the real one.
type stubBomRepo struct {
	items map[string][]model.BomItem
}

func newStubBomRepo() *stubBomRepo {
	return &stubBomRepo{items: make(map[string][]model.BomItem)}
}

func (r *stubBomRepo) ReplaceForProduct(_ context.Context, productCode string, items []model.BomItem) error {
	r.items[productCode] = items
	return nil
}

func (r *stubBomRepo) ListByProduct(_ context.Context, productCode string) ([]model.BomItem, error) {
	return r.items[productCode], nil
}

func (r *stubBomRepo) DistinctProducts(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(r.items))
	for code := range r.items {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

var _ repository.BomRepository = (*stubBomRepo)(nil)

// stubModelRepo records upserts keyed by kind+code.
type stubModelRepo struct {
	rows map[string]model.TrainedModel
}

func newStubModelRepo() *stubModelRepo {
	return &stubModelRepo{rows: make(map[string]model.TrainedModel)}
}

func (r *stubModelRepo) Upsert(_ context.Context, m *model.TrainedModel) error {
	r.rows[m.Kind+"/"+m.Code] = *m
	return nil
}

func (r *stubModelRepo) ListAll(_ context.Context) ([]model.TrainedModel, error) {
	keys := make([]string, 0, len(r.rows))
	for k := range r.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.TrainedModel, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.rows[k])
	}
	return out, nil
}

func (r *stubModelRepo) FindByKey(_ context.Context, kind, code string) (*model.TrainedModel, error) {
	row, ok := r.rows[kind+"/"+code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

var _ repository.TrainedModelRepository = (*stubModelRepo)(nil)
