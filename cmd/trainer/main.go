// cmd/trainer/main.go — batch ingest + train from CSV files, no server.
// Usage: go run ./cmd/trainer -sales sales.csv -fx rates.csv [-bom bom.csv] [-parts parts.csv]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dev-shahrooz/Smart-Pricing/internal/config"
	"github.com/dev-shahrooz/Smart-Pricing/internal/infra"
	"github.com/dev-shahrooz/Smart-Pricing/internal/ingest"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	salesPath := flag.String("sales", "", "sales history CSV")
	fxPath := flag.String("fx", "", "exchange-rate history CSV")
	bomPath := flag.String("bom", "", "bill-of-materials CSV")
	partsPath := flag.String("parts", "", "component price-history CSV")
	flag.Parse()

	if *salesPath == "" && *fxPath == "" && *bomPath == "" && *partsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	models := store.New()
	salesRepo := repository.NewSalesRepository(db)
	currencyRepo := repository.NewCurrencyRepository(db)
	bomRepo := repository.NewBomRepository(db)
	modelRepo := repository.NewTrainedModelRepository(db)
	params := service.EngineParams(cfg)

	// nil dispatcher: imports never enqueue, everything trains synchronously
	// below. No Redis connection is needed in batch mode.
	ingestSvc := service.NewIngestService(salesRepo, currencyRepo, bomRepo, models, nil, cfg.MaxCSVRows)
	trainingSvc := service.NewTrainingService(salesRepo, currencyRepo, modelRepo, models, nil, params)

	importFile := func(path, feed string, importFn func(context.Context, *os.File) error) {
		if path == "" {
			return
		}
		f, err := os.Open(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("cannot open CSV")
		}
		defer f.Close()
		if err := importFn(ctx, f); err != nil {
			log.Fatal().Err(err).Str("feed", feed).Msg("import failed")
		}
	}

	importFile(*salesPath, "sales", func(ctx context.Context, f *os.File) error {
		summary, err := ingestSvc.ImportSales(ctx, f)
		if err != nil {
			return err
		}
		log.Info().Int("rows", summary.RowsImported).Int("products", len(summary.Products)).Msg("sales imported")
		return nil
	})
	importFile(*fxPath, "fx", func(ctx context.Context, f *os.File) error {
		summary, err := ingestSvc.ImportFx(ctx, f)
		if err != nil {
			return err
		}
		log.Info().Int("rows", summary.RowsImported).Msg("fx rates imported")
		return nil
	})
	importFile(*bomPath, "bom", func(ctx context.Context, f *os.File) error {
		summary, err := ingestSvc.ImportBom(ctx, f)
		if err != nil {
			return err
		}
		log.Info().Int("rows", summary.RowsImported).Int("products", len(summary.Products)).Msg("BOM imported")
		return nil
	})

	importFile(*partsPath, "parts", func(ctx context.Context, f *os.File) error {
		byPart, rowErrs, err := ingest.LoadPartPrices(f, cfg.MaxCSVRows)
		if err != nil {
			return err
		}
		summaries, err := trainingSvc.TrainPartPrices(ctx, byPart)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			log.Info().Str("part_name", s.Code).
				Float64("slope_per_day", s.Coefficient).
				Int("months", s.SampleSize).
				Strs("flags", s.Flags).
				Msg("part price model trained")
		}
		log.Info().Int("rejected_rows", len(rowErrs)).Msg("part prices imported")
		return nil
	})

	if *salesPath != "" {
		summaries, err := trainingSvc.TrainAllElasticity(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("elasticity training failed")
		}
		for _, s := range summaries {
			log.Info().Str("product_code", s.Code).
				Float64("elasticity", s.Coefficient).
				Float64("fit_quality", s.FitQuality).
				Strs("flags", s.Flags).
				Msg("elasticity model trained")
		}
	}
	if *fxPath != "" {
		s, err := trainingSvc.TrainFx(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("fx training failed")
		}
		log.Info().Float64("slope_per_day", s.Coefficient).
			Float64("fit_quality", s.FitQuality).
			Strs("flags", s.Flags).
			Msg("fx forecast model trained")
	}
}
