package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/data/mongo"
	"github.com/lms-payment-gateway/internal/data/postgres"
	"github.com/lms-payment-gateway/internal/logger"
	"github.com/lms-payment-gateway/internal/payment_gateway"
	"github.com/lms-payment-gateway/internal/payment_gateway/components"
	"github.com/lms-payment-gateway/internal/payment_gateway/outbox_relay"
	"github.com/lms-payment-gateway/internal/payment_gateway/service"
	"github.com/lms-payment-gateway/internal/platform/messaging/producers"
	"github.com/lms-payment-gateway/internal/platform/persistence"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("payment_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Payment Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"return_mode", cfg.Payment.ReturnMode,
	)

	merchant, err := vnpay.NewMerchantConfig(cfg.VNPay)
	if err != nil {
		log.Error("Failed to build VNPay merchant configuration", "error", err)
		os.Exit(1)
	}
	// Refuse to start with credentials that cannot sign or verify anything.
	if err := merchant.Validate(); err != nil {
		log.Error("VNPay merchant configuration is incomplete", "error", err)
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	grantProducer, err := producers.NewEnrollmentGrantProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize enrollment grant producer", "error", err)
		os.Exit(1)
	}

	// Repositories
	paymentRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	callbackRepo := mongo.NewCallbackRepository(log, mongoDB.Database())
	if err := callbackRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create callback audit indexes", "error", err)
		os.Exit(1)
	}

	// Services
	gateway := vnpay.NewGateway(merchant)
	grantOutbox := components.NewGrantOutbox(outboxRepo, log)
	reconciler := service.NewReconciler(&cfg.Reconciler, postgresDB, paymentRepo, grantOutbox, log)

	auditRecorder, err := service.NewPoolAuditRecorder(&cfg.Audit, callbackRepo, log)
	if err != nil {
		log.Error("Failed to initialize callback audit recorder", "error", err)
		os.Exit(1)
	}

	orderService := service.NewOrderService(log, gateway, paymentRepo)
	callbackService := service.NewCallbackService(log, &cfg.Payment, gateway, reconciler, paymentRepo, auditRecorder)
	transactionService := service.NewTransactionService(log, paymentRepo, callbackRepo)

	// Outbox relay
	grantPublisher := outbox_relay.NewGrantPublisher(outboxRepo, grantProducer, log)
	poller := outbox_relay.NewPoller(&cfg.Outbox, outboxRepo, grantPublisher, log)

	server := payment_gateway.NewServer(log, cfg, payment_gateway.Dependencies{
		Orders:       orderService,
		Callbacks:    callbackService,
		Transactions: transactionService,
		Merchant:     gateway,
		HealthChecks: map[string]payment_gateway.Pinger{
			"postgres": postgresDB,
			"mongodb":  mongoDB,
		},
	})
	log.Info("REST server initialized")

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting enrollment outbox relay",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop taking callbacks before the stores they write to go away.
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	cancelAppCtx()

	relayDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(relayDone)
	}()
	select {
	case <-relayDone:
		log.Info("Outbox relay stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached while waiting for outbox relay")
	}

	auditRecorder.Shutdown()

	if err = grantProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Payment Gateway shutdown completed with errors")
	} else {
		log.Info("Payment Gateway shutdown completed successfully")
	}
}
