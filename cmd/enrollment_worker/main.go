package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/data/postgres"
	"github.com/lms-payment-gateway/internal/enrollment_worker/consumer"
	"github.com/lms-payment-gateway/internal/enrollment_worker/service"
	"github.com/lms-payment-gateway/internal/logger"
	"github.com/lms-payment-gateway/internal/platform/messaging/consumers"
	"github.com/lms-payment-gateway/internal/platform/messaging/producers"
	"github.com/lms-payment-gateway/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("enrollment_worker")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Enrollment Worker",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	enrollmentRepo := postgres.NewEnrollmentRepository(log, postgresDB)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	grantService, err := service.NewWorkerPoolGrantService(
		service.NewGrantService(log, enrollmentRepo),
		cfg.WorkerPool,
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	grantEventHandler := consumer.NewGrantEventHandler(log, grantService, dlqProducer)

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.EnrollmentTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, grantEventHandler.HandleMessage); err != nil {
		log.Error("Failed to start Kafka consumer", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-kafkaConsumer.Done():
		serviceErr = fmt.Errorf("kafka consumer stopped unexpectedly")
		log.Error("Service error occurred", "error", serviceErr)
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	select {
	case <-kafkaConsumer.Done():
		log.Info("Kafka consumer stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	grantService.Shutdown()

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	postgresDB.Close()

	if serviceErr != nil {
		log.Error("Enrollment Worker shutdown with errors", "error", serviceErr)
	} else if err != nil {
		log.Error("Enrollment Worker shutdown completed with errors")
	} else {
		log.Info("Enrollment Worker shutdown completed successfully")
	}
}
