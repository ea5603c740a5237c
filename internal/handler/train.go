package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
)

// TrainHandler triggers synchronous fits. Uploads queue the same work in the
// background; these endpoints exist for operators who want the result now.
type TrainHandler struct {
	training service.TrainingService
}

func NewTrainHandler(training service.TrainingService) *TrainHandler {
	return &TrainHandler{training: training}
}

// PostElasticity handles POST /v1/train/elasticity.
func (h *TrainHandler) PostElasticity(c *gin.Context) {
	var req dto.TrainRequest
	if !bindAndValidate(c, &req) {
		return
	}
	summary, err := h.training.TrainElasticity(c.Request.Context(), req.ProductCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PostFx handles POST /v1/train/fx. There is a single rate model, so the
// request carries no body.
func (h *TrainHandler) PostFx(c *gin.Context) {
	summary, err := h.training.TrainFx(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
