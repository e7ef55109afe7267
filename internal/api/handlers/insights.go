package handlers

import (
	"errors"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

type InsightsHandler struct {
	service *services.InsightsService
}

func NewInsightsHandler(cfg *config.Config) *InsightsHandler {
	return &InsightsHandler{service: services.NewInsightsService(cfg)}
}

// Get generates spending insights for the current user
func (h *InsightsHandler) Get(c *gin.Context) {
	insight, err := h.service.Generate(c.Request.Context(), c.GetUint("user_id"))
	if err != nil {
		if errors.Is(err, services.ErrInsightsDisabled) {
			c.JSON(503, gin.H{"error": "Insights are not configured on this server"})
			return
		}
		c.JSON(502, gin.H{"error": "Failed to generate insights"})
		return
	}

	c.JSON(200, insight)
}
