package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocksim/internal/auth"
	"stocksim/internal/service"
)

type PortfolioHandler struct {
	Portfolio *service.PortfolioService
	Snapshots *service.SnapshotService
	Logger    *zap.Logger
}

func (h *PortfolioHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/portfolio")
	g.GET("/summary", h.summary)
	g.GET("/history", h.history)
}

// @Summary Live portfolio valuation
// @Tags portfolio
// @Success 200 {object} service.PortfolioSummary
// @Router /api/v1/portfolio/summary [get]
func (h *PortfolioHandler) summary(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	summary, err := h.Portfolio.GetSummary(c.Request.Context(), user.ID)
	if err != nil {
		if !service.IsBusinessError(err) && h.Logger != nil {
			h.Logger.Error("portfolio summary failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		}
		BusinessError(c, err)
		return
	}

	// Opportunistic snapshot so today's point exists even if the batch job
	// has not run yet. Failure here never fails the request.
	if h.Snapshots != nil {
		if _, err := h.Snapshots.Record(c.Request.Context(), user.ID, time.Now().UTC(), summary); err != nil {
			if h.Logger != nil {
				h.Logger.Warn("opportunistic snapshot failed", zap.Uint64("user_id", user.ID), zap.Error(err))
			}
		}
	}

	Ok(c, summary, nil)
}

// @Summary Snapshot history for charts
// @Tags portfolio
// @Param period query string false "1d,5d,1mo,3mo,6mo,1y,5y,max"
// @Success 200 {object} service.PortfolioHistory
// @Router /api/v1/portfolio/history [get]
func (h *PortfolioHandler) history(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	period := strings.TrimSpace(c.Query("period"))
	if period == "" {
		period = "1mo"
	}
	history, err := h.Portfolio.GetHistory(c.Request.Context(), user.ID, period)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("portfolio history failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, "request failed", nil)
		return
	}
	Ok(c, history, nil)
}
