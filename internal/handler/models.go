package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
)

const modelCacheTTL = 60 * time.Second

// ModelsHandler serves the trained-model inventory. Summaries are cached in
// Redis; training invalidates the keys, the TTL is a backstop.
type ModelsHandler struct {
	modelRepo repository.TrainedModelRepository
	models    *store.ModelStore
	rdb       *redis.Client
	params    engine.Params
}

func NewModelsHandler(modelRepo repository.TrainedModelRepository, models *store.ModelStore, rdb *redis.Client, params engine.Params) *ModelsHandler {
	return &ModelsHandler{modelRepo: modelRepo, models: models, rdb: rdb, params: params}
}

// List handles GET /v1/models.
func (h *ModelsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var cached dto.ModelListResponse
	if h.cacheGet(ctx, service.ModelListCacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.modelRepo.ListAll(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.ModelListResponse{Models: make([]dto.ModelSummary, 0, len(rows)), Total: len(rows)}
	for _, row := range rows {
		resp.Models = append(resp.Models, service.SummaryFromRow(row, h.models.Get(storeKey(row.Kind, row.Code)), h.params))
	}

	h.cacheSet(ctx, service.ModelListCacheKey, resp)
	c.JSON(http.StatusOK, resp)
}

// GetByCode handles GET /v1/models/:code. The FX forecaster lives under its
// reserved code; any other code resolves to an elasticity model first, then
// to a part price model under the same slug.
func (h *ModelsHandler) GetByCode(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	cacheKey := service.ModelCacheKey(code)
	var cached dto.ModelSummary
	if h.cacheGet(ctx, cacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	kind := model.ModelKindElasticity
	if code == model.FxModelCode {
		kind = model.ModelKindFxForecast
	}
	row, err := h.modelRepo.FindByKey(ctx, kind, code)
	if errors.Is(err, gorm.ErrRecordNotFound) && kind == model.ModelKindElasticity {
		row, err = h.modelRepo.FindByKey(ctx, model.ModelKindPartPrice, code)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summary := service.SummaryFromRow(*row, h.models.Get(storeKey(row.Kind, row.Code)), h.params)
	h.cacheSet(ctx, cacheKey, summary)
	c.JSON(http.StatusOK, summary)
}

// storeKey maps a persisted row to its in-memory store key; part models are
// namespaced so slugs cannot shadow product codes.
func storeKey(kind, code string) string {
	if kind == model.ModelKindPartPrice {
		return model.PartModelKey(code)
	}
	return code
}

func (h *ModelsHandler) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if h.rdb == nil {
		return false
	}
	raw, err := h.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (h *ModelsHandler) cacheSet(ctx context.Context, key string, value interface{}) {
	if h.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.rdb.Set(ctx, key, raw, modelCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("model summary cache write failed")
	}
}
