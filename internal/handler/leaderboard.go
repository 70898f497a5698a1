package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocksim/internal/service"
)

type LeaderboardHandler struct {
	Leaderboard *service.LeaderboardService
	Logger      *zap.Logger
}

func (h *LeaderboardHandler) Register(r *gin.RouterGroup) {
	r.GET("/leaderboard", h.get)
}

// @Summary Ranked users by portfolio value
// @Tags leaderboard
// @Param timeframe query string false "day, week, month or all"
// @Success 200 {array} service.LeaderboardEntry
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) get(c *gin.Context) {
	timeframe, err := service.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		BusinessError(c, err)
		return
	}
	entries, err := h.Leaderboard.Get(c.Request.Context(), timeframe)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("leaderboard failed", zap.Error(err))
		}
		BusinessError(c, err)
		return
	}
	Ok(c, entries, map[string]any{"timeframe": string(timeframe)})
}
