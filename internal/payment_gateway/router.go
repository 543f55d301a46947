package payment_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lms-payment-gateway/internal/payment_gateway/handler"
	"github.com/lms-payment-gateway/internal/payment_gateway/middleware"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	callbackHandler *handler.CallbackHandler,
	transactionHandler *handler.TransactionHandler,
	dependencies map[string]Pinger,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		vnpay := v1.Group("/payments/vnpay")
		{
			vnpay.POST("", paymentHandler.Create)
			vnpay.GET("/config", paymentHandler.ConfigStatus)
			vnpay.GET("/return", callbackHandler.Return)
			vnpay.GET("/ipn", callbackHandler.IPN)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.GET("/:reference", transactionHandler.GetByReference)
			transactions.GET("/:reference/callbacks", transactionHandler.GetCallbacks)
		}

		v1.GET("/users/:user_id/courses/:course_id/payment-status", transactionHandler.GetPaymentStatus)
	}

	r.GET("/health", healthHandler(logger, dependencies))
}

// healthHandler reports 503 when any backing store does not answer a ping
func healthHandler(logger *slog.Logger, dependencies map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		checks := make(map[string]string, len(dependencies))
		status := http.StatusOK
		for name, dep := range dependencies {
			if err := dep.Ping(ctx); err != nil {
				logger.Warn("Health check failed", "dependency", name, "error", err)
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "up"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": checks, "timestamp": time.Now().UTC()})
	}
}
