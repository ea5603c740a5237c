package router

import (
	"time"

	"github.com/dev-shahrooz/Smart-Pricing/internal/config"
	"github.com/dev-shahrooz/Smart-Pricing/internal/handler"
	"github.com/dev-shahrooz/Smart-Pricing/internal/middleware"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
	"github.com/dev-shahrooz/Smart-Pricing/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// The model store is shared with the worker pool, so it is built by the
// caller and injected here.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, models *store.ModelStore) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	params := service.EngineParams(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	salesRepo := repository.NewSalesRepository(db)
	currencyRepo := repository.NewCurrencyRepository(db)
	bomRepo := repository.NewBomRepository(db)
	modelRepo := repository.NewTrainedModelRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — uploads enqueue retrains instead of fitting inline
	dispatcher := worker.NewDispatcher(rdb)

	ingestSvc := service.NewIngestService(salesRepo, currencyRepo, bomRepo, models, dispatcher, cfg.MaxCSVRows)
	trainingSvc := service.NewTrainingService(salesRepo, currencyRepo, modelRepo, models, rdb, params)
	recommendSvc := service.NewRecommendService(models, bomRepo, cfg, params)

	// ── Handlers ─────────────────────────────────────────────────────────────
	uploadsH := handler.NewUploadsHandler(ingestSvc, trainingSvc, cfg.MaxCSVRows)
	trainH := handler.NewTrainHandler(trainingSvc)
	modelsH := handler.NewModelsHandler(modelRepo, models, rdb, params)
	recommendH := handler.NewRecommendHandler(recommendSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		uploads := v1.Group("/uploads")
		{
			uploads.POST("/sales", uploadsH.PostSales)
			uploads.POST("/fx", uploadsH.PostFx)
			uploads.POST("/bom", uploadsH.PostBom)
			uploads.POST("/parts", uploadsH.PostParts)
		}

		train := v1.Group("/train")
		{
			train.POST("/elasticity", trainH.PostElasticity)
			train.POST("/fx", trainH.PostFx)
		}

		v1.GET("/models", modelsH.List)
		v1.GET("/models/:code", modelsH.GetByCode)

		v1.POST("/recommend", recommendH.PostRecommend)
		v1.POST("/scenarios", recommendH.PostScenarios)
	}

	return r
}
