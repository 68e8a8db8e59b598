package controllers

import (
	"context"
	"net/http"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
)

type AnalyticsService interface {
	Summary(ctx context.Context, period string) (*models.Analytics, *services.ServiceError)
}

type AnalyticsController struct {
	analytics AnalyticsService
}

func NewAnalyticsController(analytics AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

func (ac *AnalyticsController) Summary(ctx *gin.Context) {
	summary, serviceErr := ac.analytics.Summary(ctx.Request.Context(), ctx.Param("period"))
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
