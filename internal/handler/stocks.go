package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocksim/internal/service"
)

type StockHandler struct {
	Stocks *service.StockService
	Logger *zap.Logger
}

func (h *StockHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/stocks")
	g.GET("/:symbol/quote", h.quote)
	g.GET("/:symbol/validate", h.validate)
}

// @Summary Current quote for a symbol
// @Tags stocks
// @Param symbol path string true "ticker symbol"
// @Success 200 {object} map[string]any
// @Router /api/v1/stocks/{symbol}/quote [get]
func (h *StockHandler) quote(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	quote, err := h.Stocks.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("quote lookup failed", zap.String("symbol", symbol), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, "quote unavailable", nil)
		return
	}
	Ok(c, gin.H{
		"symbol":         quote.Symbol,
		"company_name":   quote.CompanyName,
		"price":          quote.Price,
		"previous_close": quote.PreviousClose,
	}, nil)
}

// @Summary Validate a ticker symbol
// @Tags stocks
// @Param symbol path string true "ticker symbol"
// @Success 200 {object} map[string]any
// @Router /api/v1/stocks/{symbol}/validate [get]
func (h *StockHandler) validate(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	valid, err := h.Stocks.ValidateSymbol(c.Request.Context(), symbol)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("symbol validation failed", zap.String("symbol", symbol), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, "validation unavailable", nil)
		return
	}
	Ok(c, gin.H{"symbol": strings.ToUpper(symbol), "valid": valid}, nil)
}
