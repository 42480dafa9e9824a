package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/utils"
)

// StatsController provides site statistics.
type StatsController struct {
	stats *services.StatsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

// GetStats returns user, published post, comment and like counts.
func (s *StatsController) GetStats(ctx *gin.Context) {
	utils.Success(ctx, s.stats.Get(ctx.Request.Context()))
}
