package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolGrantService bounds how many grants hit the database at once.
// ProcessGrant still blocks until its grant finishes, so the caller keeps
// commit-after-success semantics.
type WorkerPoolGrantService struct {
	baseService GrantService
	pool        *ants.Pool
	logger      *slog.Logger
}

func NewWorkerPoolGrantService(
	baseService GrantService,
	cfg config.WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolGrantService, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("worker pool size must be greater than 0, got %d", cfg.Size)
	}

	pool, err := ants.NewPool(cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolGrantService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ProcessGrant submits the grant to the pool and waits for its result or ctx.
func (s *WorkerPoolGrantService) ProcessGrant(ctx context.Context, request *shared.EnrollmentGrantRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Debug("Submitting enrollment grant to worker pool", "reference", request.Reference)

	// Buffered so a worker finishing after ctx is done never blocks.
	resultChan := make(chan error, 1)
	requestCopy := *request

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.ProcessGrant(ctx, &requestCopy)
	})
	if err != nil {
		logger.Error("Failed to submit enrollment grant to worker pool",
			"reference", request.Reference,
			"error", err,
		)
		return fmt.Errorf("failed to submit grant %s: %w", request.Reference, err)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolGrantService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolGrantService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolGrantService) Capacity() int {
	return s.pool.Cap()
}
