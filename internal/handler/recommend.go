package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
)

// RecommendHandler serves price recommendations and exchange-rate scenarios.
type RecommendHandler struct {
	recommend service.RecommendService
}

func NewRecommendHandler(recommend service.RecommendService) *RecommendHandler {
	return &RecommendHandler{recommend: recommend}
}

// PostRecommend handles POST /v1/recommend.
func (h *RecommendHandler) PostRecommend(c *gin.Context) {
	var req dto.RecommendRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.recommend.Recommend(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PostScenarios handles POST /v1/scenarios.
func (h *RecommendHandler) PostScenarios(c *gin.Context) {
	var req dto.ScenarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.recommend.Simulate(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
