package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saedabdu/tickerproxy/internal/api"
	"github.com/saedabdu/tickerproxy/internal/service"
	"github.com/saedabdu/tickerproxy/internal/table"
)

const rootMessage = "Ticker API proxy is running. Use /ticker/{symbol}/{dataset} to query market data."

// TickerService is the dataset source the handler serves
type TickerService interface {
	Info(ctx context.Context, symbol string) (map[string]any, error)
	History(ctx context.Context, symbol, period, interval string) ([]table.Record, error)
	AnalystPriceTargets(ctx context.Context, symbol string) (map[string]any, error)
	FastInfo(ctx context.Context, symbol string) (map[string]any, error)
	IncomeStatement(ctx context.Context, symbol string) ([]table.Record, error)
}

// TickerHandler handles HTTP requests for ticker datasets
type TickerHandler struct {
	tickerService TickerService
}

// NewTickerHandler creates a new TickerHandler
func NewTickerHandler(tickerService TickerService) *TickerHandler {
	return &TickerHandler{
		tickerService: tickerService,
	}
}

// HandleRoot reports that the proxy is up
func (h *TickerHandler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, api.MessageResponse{Message: rootMessage})
}

// HandleHealth is the liveness probe
func (h *TickerHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// HandleInfo handles requests to /ticker/:symbol/info
func (h *TickerHandler) HandleInfo(c *gin.Context) {
	symbol := c.Param("symbol")

	info, err := h.tickerService.Info(c.Request.Context(), symbol)
	if err != nil {
		h.sendErrorResponse(c, service.DatasetInfo, symbol, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// HandleHistory handles requests to /ticker/:symbol/history
func (h *TickerHandler) HandleHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	period := c.DefaultQuery("period", service.DefaultPeriod)
	interval := c.DefaultQuery("interval", service.DefaultInterval)

	records, err := h.tickerService.History(c.Request.Context(), symbol, period, interval)
	if err != nil {
		h.sendErrorResponse(c, service.DatasetHistory, symbol, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// HandleAnalystPriceTargets handles requests to /ticker/:symbol/analyst-price-targets
func (h *TickerHandler) HandleAnalystPriceTargets(c *gin.Context) {
	symbol := c.Param("symbol")

	targets, err := h.tickerService.AnalystPriceTargets(c.Request.Context(), symbol)
	if err != nil {
		h.sendErrorResponse(c, service.DatasetAnalystPriceTargets, symbol, err)
		return
	}

	c.JSON(http.StatusOK, targets)
}

// HandleFastInfo handles requests to /ticker/:symbol/fast-info
func (h *TickerHandler) HandleFastInfo(c *gin.Context) {
	symbol := c.Param("symbol")

	info, err := h.tickerService.FastInfo(c.Request.Context(), symbol)
	if err != nil {
		h.sendErrorResponse(c, service.DatasetFastInfo, symbol, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// HandleIncomeStatement handles requests to /ticker/:symbol/income-stmt
func (h *TickerHandler) HandleIncomeStatement(c *gin.Context) {
	symbol := c.Param("symbol")

	records, err := h.tickerService.IncomeStatement(c.Request.Context(), symbol)
	if err != nil {
		h.sendErrorResponse(c, service.DatasetIncomeStatement, symbol, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// sendErrorResponse maps not-found errors to 404 and everything else to 500
func (h *TickerHandler) sendErrorResponse(c *gin.Context, dataset, symbol string, err error) {
	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: notFound.Message})
		return
	}

	// logged once by the request logger
	_ = c.Error(fmt.Errorf("fetching %s for %s: %w", dataset, symbol, err))

	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Detail: fmt.Sprintf("An error occurred while fetching %s for %s: %v", dataset, symbol, err),
	})
}
