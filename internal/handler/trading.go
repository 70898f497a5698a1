package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocksim/internal/auth"
	"stocksim/internal/repository"
	"stocksim/internal/service"
)

type TradingHandler struct {
	Repo    repository.Repository
	Trading *service.TradingService
	Stocks  *service.StockService
	Logger  *zap.Logger
}

func (h *TradingHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/trading")
	g.POST("/orders", h.placeOrder)
	g.GET("/positions", h.listPositions)
	g.GET("/positions/:symbol", h.getPosition)
	g.GET("/activities", h.listActivities)
}

type orderPayload struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Side     string          `json:"side" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// @Summary Place a market order
// @Tags trading
// @Accept json
// @Param order body orderPayload true "order"
// @Success 200 {object} service.TradeConfirmation
// @Router /api/v1/trading/orders [post]
func (h *TradingHandler) placeOrder(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}

	var payload orderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		Error(c, http.StatusBadRequest, "invalid order payload", nil)
		return
	}

	// A trade fill needs a live price; there is no fallback price for an
	// execution, so a provider failure rejects the order outright.
	quote, err := h.Stocks.GetQuote(c.Request.Context(), payload.Symbol)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("order rejected, no live price",
				zap.String("symbol", payload.Symbol), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, "market data unavailable", nil)
		return
	}

	confirmation, err := h.Trading.ExecuteOrder(c.Request.Context(), user.ID, service.OrderRequest{
		Symbol:         payload.Symbol,
		Side:           payload.Side,
		Quantity:       payload.Quantity,
		ExecutionPrice: quote.Price,
	})
	if err != nil {
		if !service.IsBusinessError(err) && h.Logger != nil {
			h.Logger.Error("order execution failed",
				zap.Uint64("user_id", user.ID),
				zap.String("symbol", payload.Symbol),
				zap.Error(err))
		}
		BusinessError(c, err)
		return
	}
	Ok(c, confirmation, nil)
}

// @Summary List open positions
// @Tags trading
// @Success 200 {array} models.Position
// @Router /api/v1/trading/positions [get]
func (h *TradingHandler) listPositions(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	items, err := h.Repo.ListPositionsByUser(c.Request.Context(), user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, "request failed", nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary One position by symbol
// @Tags trading
// @Param symbol path string true "ticker symbol"
// @Success 200 {object} models.Position
// @Router /api/v1/trading/positions/{symbol} [get]
func (h *TradingHandler) getPosition(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	item, err := h.Repo.GetPosition(c.Request.Context(), user.ID, symbol)
	if err != nil {
		Error(c, http.StatusBadGateway, "request failed", nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "no position", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Trade history
// @Tags trading
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Param from query string false "RFC3339 or YYYY-MM-DD lower bound"
// @Param to query string false "RFC3339 or YYYY-MM-DD upper bound"
// @Success 200 {array} models.Activity
// @Router /api/v1/trading/activities [get]
func (h *TradingHandler) listActivities(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	params := repository.ListActivitiesParams{
		UserID: user.ID,
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
		From:   timeQueryPtr(c, "from"),
		To:     timeQueryPtr(c, "to"),
	}
	items, err := h.Repo.ListActivities(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, "request failed", nil)
		return
	}
	total, err := h.Repo.CountActivities(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, "request failed", nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}
