package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stocksim/internal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// BusinessError maps a service error to a response. Business-rule failures
// carry their specific message to the client; infrastructure failures return
// a generic message (detail goes to the operational log at the call site).
func BusinessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidSymbol),
		errors.Is(err, service.ErrInvalidTimeframe):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInsufficientShares),
		errors.Is(err, service.ErrNoPosition),
		errors.Is(err, service.ErrDuplicateWatchlist):
		Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, service.ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, "request failed", nil)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

func timeQueryPtr(c *gin.Context, key string) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		t := ts.UTC()
		return &t
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		t := ts.UTC()
		return &t
	}
	return nil
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	return map[string]any{
		"limit":  limit,
		"offset": offset,
		"total":  total,
	}
}
