package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/panjf2000/ants/v2"
)

// PoolAuditRecorder writes callback records through a bounded non-blocking pool.
// A full pool drops the record with a warning instead of delaying the IPN response.
type PoolAuditRecorder struct {
	repo    callback.Repository
	pool    *ants.Pool
	timeout time.Duration
	logger  *slog.Logger
}

func NewPoolAuditRecorder(cfg *config.AuditConfig, repo callback.Repository, logger *slog.Logger) (*PoolAuditRecorder, error) {
	pool, err := ants.NewPool(cfg.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit worker pool: %w", err)
	}

	return &PoolAuditRecorder{
		repo:    repo,
		pool:    pool,
		timeout: cfg.WriteTimeout,
		logger:  logger,
	}, nil
}

// Record stores the record asynchronously. The write outlives the request context.
func (r *PoolAuditRecorder) Record(ctx context.Context, record *callback.Record) {
	writeCtx := context.WithoutCancel(ctx)

	err := r.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(writeCtx, r.timeout)
		defer cancel()

		if err := r.repo.Create(ctx, record); err != nil {
			r.logger.Error("Failed to write callback audit record",
				"reference", record.Reference,
				"channel", string(record.Channel),
				"error", err,
			)
		}
	})
	if err != nil {
		r.logger.Warn("Callback audit record dropped",
			"reference", record.Reference,
			"channel", string(record.Channel),
			"error", err,
		)
	}
}

// Shutdown waits up to the write timeout for in-flight records.
func (r *PoolAuditRecorder) Shutdown() {
	r.logger.Info("Shutting down audit recorder", "running_workers", r.pool.Running())
	if err := r.pool.ReleaseTimeout(r.timeout); err != nil {
		r.logger.Warn("Audit recorder did not drain in time", "error", err)
	}
}
