// Package payment_gateway wires the VNPay HTTP surface: order creation, callbacks and lookups.
package payment_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/payment_gateway/handler"
	"github.com/lms-payment-gateway/internal/payment_gateway/service"
)

// Dependencies are the services and stores the HTTP layer calls into
type Dependencies struct {
	Orders       service.OrderService
	Callbacks    service.CallbackService
	Transactions service.TransactionService
	Merchant     handler.MerchantInfo
	HealthChecks map[string]Pinger
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, deps Dependencies) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	paymentHandler := handler.NewPaymentHandler(log, deps.Orders, deps.Merchant)
	callbackHandler := handler.NewCallbackHandler(log, deps.Callbacks, cfg.Payment.StatusPageURL)
	transactionHandler := handler.NewTransactionHandler(log, deps.Transactions)

	setupRouter(log, httpRouter, paymentHandler, callbackHandler, transactionHandler, deps.HealthChecks)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server; ctx bounds the drain
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
