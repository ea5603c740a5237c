package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/ingest"
	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
	"github.com/dev-shahrooz/Smart-Pricing/internal/worker"
)

// IngestService persists uploaded feeds, moves the data-arrival watermark so
// affected models read as Stale, and queues their retrains.
type IngestService interface {
	ImportSales(ctx context.Context, r io.Reader) (*dto.ImportSummary, error)
	ImportFx(ctx context.Context, r io.Reader) (*dto.ImportSummary, error)
	ImportBom(ctx context.Context, r io.Reader) (*dto.ImportSummary, error)
}

type ingestService struct {
	salesRepo    repository.SalesRepository
	currencyRepo repository.CurrencyRepository
	bomRepo      repository.BomRepository
	models       *store.ModelStore
	dispatcher   *worker.Dispatcher // nil in CLI mode: train synchronously instead
	maxRows      int
}

func NewIngestService(
	salesRepo repository.SalesRepository,
	currencyRepo repository.CurrencyRepository,
	bomRepo repository.BomRepository,
	models *store.ModelStore,
	dispatcher *worker.Dispatcher,
	maxRows int,
) IngestService {
	return &ingestService{
		salesRepo:    salesRepo,
		currencyRepo: currencyRepo,
		bomRepo:      bomRepo,
		models:       models,
		dispatcher:   dispatcher,
		maxRows:      maxRows,
	}
}

func (s *ingestService) ImportSales(ctx context.Context, r io.Reader) (*dto.ImportSummary, error) {
	byProduct, rowErrs, err := ingest.LoadSales(r, s.maxRows)
	if err != nil {
		return nil, err
	}

	var rows []model.SalesRecord
	codes := make([]string, 0, len(byProduct))
	for code, records := range byProduct {
		rows = append(rows, records...)
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if err := s.salesRepo.CreateBatch(ctx, rows); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	queued := 0
	for _, code := range codes {
		s.models.MarkDataArrival(code, now)
		if s.dispatcher != nil {
			if err := s.dispatcher.EnqueueRetrainElasticity(ctx, code); err != nil {
				log.Error().Str("product_code", code).Err(err).Msg("failed to enqueue retrain")
				continue
			}
			queued++
		}
	}

	log.Info().Int("rows", len(rows)).Int("products", len(codes)).
		Int("rejected_rows", len(rowErrs)).Msg("sales feed imported")

	return &dto.ImportSummary{
		RowsImported:   len(rows),
		Products:       codes,
		RowErrors:      rowErrorStrings(rowErrs),
		RetrainsQueued: queued,
	}, nil
}

func (s *ingestService) ImportFx(ctx context.Context, r io.Reader) (*dto.ImportSummary, error) {
	rates, rowErrs, err := ingest.LoadFxRates(r, s.maxRows)
	if err != nil {
		return nil, err
	}

	if err := s.currencyRepo.CreateBatch(ctx, rates); err != nil {
		return nil, err
	}

	queued := 0
	if len(rates) > 0 {
		s.models.MarkDataArrival(model.FxModelCode, time.Now().UTC())
		if s.dispatcher != nil {
			if err := s.dispatcher.EnqueueRetrainFx(ctx); err != nil {
				log.Error().Err(err).Msg("failed to enqueue fx retrain")
			} else {
				queued++
			}
		}
	}

	log.Info().Int("rows", len(rates)).Int("rejected_rows", len(rowErrs)).Msg("fx feed imported")

	return &dto.ImportSummary{
		RowsImported:   len(rates),
		RowErrors:      rowErrorStrings(rowErrs),
		RetrainsQueued: queued,
	}, nil
}

func (s *ingestService) ImportBom(ctx context.Context, r io.Reader) (*dto.ImportSummary, error) {
	byProduct, rowErrs, err := ingest.LoadBom(r, s.maxRows)
	if err != nil {
		return nil, err
	}

	total := 0
	codes := make([]string, 0, len(byProduct))
	for code, items := range byProduct {
		if err := s.bomRepo.ReplaceForProduct(ctx, code, items); err != nil {
			return nil, err
		}
		total += len(items)
		codes = append(codes, code)
	}
	sort.Strings(codes)

	log.Info().Int("rows", total).Int("products", len(codes)).
		Int("rejected_rows", len(rowErrs)).Msg("bom imported")

	// BOM lines feed costing, not trained models — nothing goes stale here.
	return &dto.ImportSummary{
		RowsImported: total,
		Products:     codes,
		RowErrors:    rowErrorStrings(rowErrs),
	}, nil
}

func rowErrorStrings(rowErrs []ingest.RowError) []string {
	out := make([]string, len(rowErrs))
	for i, e := range rowErrs {
		out[i] = e.Error()
	}
	return out
}
