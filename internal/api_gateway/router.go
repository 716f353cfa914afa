package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/api_gateway/handler"
	"github.com/wallet-ledger/internal/api_gateway/middleware"
	"github.com/wallet-ledger/internal/platform/metrics"
)

type handlers struct {
	accounts     *handler.AccountHandler
	transactions *handler.TransactionHandler
	reports      *handler.ReportHandler
}

const healthCheckTimeout = 2 * time.Second

func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers, checks map[string]Pinger, m *metrics.Metrics, metricsPath string) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger, "/health", metricsPath))
	r.Use(middleware.Metrics(m))

	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", h.accounts.Create)
			accounts.GET("", h.accounts.List)
			accounts.GET("/:id", h.accounts.GetByID)
			accounts.PATCH("/:id", h.accounts.Update)
			accounts.DELETE("/:id", h.accounts.Delete)
			accounts.GET("/:id/balance", h.accounts.Balance)
			accounts.GET("/:id/transactions", h.transactions.GetByAccountID)
			accounts.GET("/:id/rejections", h.accounts.Rejections)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", h.transactions.Create)
			transactions.POST("/async", h.transactions.CreateAsync)
			transactions.GET("", h.transactions.List)
			transactions.GET("/:id", h.transactions.GetByID)
		}

		v1.GET("/transaction-logs", h.transactions.ListLogs)
		v1.GET("/reports/transaction-logs", h.reports.ArchivedLogs)
	}

	r.GET("/health", health(logger, checks))
	if m != nil {
		r.GET(metricsPath, gin.WrapH(m.Handler()))
	}
}

// health reports 503 while any dependency fails its ping.
func health(logger *slog.Logger, checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status, code := "ok", http.StatusOK
		components := make(gin.H, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				logger.Warn("health check failed", "component", name, "error", err)
				components[name] = "down"
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			components[name] = "up"
		}

		c.JSON(code, gin.H{"status": status, "components": components, "timestamp": time.Now().UTC()})
	}
}
