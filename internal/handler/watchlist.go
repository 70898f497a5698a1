package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocksim/internal/auth"
	"stocksim/internal/service"
)

type WatchlistHandler struct {
	Watchlist *service.WatchlistService
}

func (h *WatchlistHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/watchlist")
	g.GET("", h.list)
	g.POST("", h.add)
	g.DELETE("/:symbol", h.remove)
}

type watchlistPayload struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (h *WatchlistHandler) list(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	items, err := h.Watchlist.List(c.Request.Context(), user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, "request failed", nil)
		return
	}
	Ok(c, items, nil)
}

func (h *WatchlistHandler) add(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	var payload watchlistPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	item, err := h.Watchlist.Add(c.Request.Context(), user.ID, payload.Symbol)
	if err != nil {
		BusinessError(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *WatchlistHandler) remove(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	if err := h.Watchlist.Remove(c.Request.Context(), user.ID, c.Param("symbol")); err != nil {
		BusinessError(c, err)
		return
	}
	Ok(c, gin.H{"removed": true}, nil)
}
