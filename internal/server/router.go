package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saedabdu/tickerproxy/internal/api"
	"github.com/saedabdu/tickerproxy/internal/api/handler"
	"github.com/saedabdu/tickerproxy/internal/logger"
	"github.com/saedabdu/tickerproxy/internal/metrics"
)

// NewRouter wires the middleware chain and the ticker routes
func NewRouter(h *handler.TickerHandler, m *metrics.Metrics, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestIDMiddleware(log),
		LoggerMiddleware(),
		m.Middleware(),
		RecoveryMiddleware(),
	)

	router.GET("/", h.HandleRoot)
	router.GET("/healthz", h.HandleHealth)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	ticker := router.Group("/ticker/:symbol")
	{
		ticker.GET("/info", h.HandleInfo)
		ticker.GET("/history", h.HandleHistory)
		ticker.GET("/analyst-price-targets", h.HandleAnalystPriceTargets)
		ticker.GET("/fast-info", h.HandleFastInfo)
		ticker.GET("/income-stmt", h.HandleIncomeStatement)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: "Not Found"})
	})

	return router
}
