package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/service"
	"go.uber.org/zap"
)

// InvoiceSyncJobName is the name of the invoice status sync job
const InvoiceSyncJobName = "invoice_sync"

// InvoiceSyncer reconciles pending electronic invoices against the ERP
// mirror. The interface keeps the job decoupled from the service wiring.
type InvoiceSyncer interface {
	// SyncPending updates orders whose invoice the ERP has issued since the
	// last pass. Returns how many were updated and how many are still
	// awaiting the mirror.
	SyncPending(ctx context.Context) (updated int, missing int, err error)
}

// InvoiceSyncJob pulls invoice outcomes from the ERP mirror on a schedule
type InvoiceSyncJob struct {
	syncer  InvoiceSyncer
	logger  *zap.Logger
	timeout time.Duration
}

// NewInvoiceSyncJob creates a new invoice sync job.
// The timeout controls how long one sync pass is allowed to run.
func NewInvoiceSyncJob(syncer InvoiceSyncer, logger *zap.Logger, timeout time.Duration) *InvoiceSyncJob {
	return &InvoiceSyncJob{
		syncer:  syncer,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sync pass. Called by the scheduler according to the cron
// expression.
func (j *InvoiceSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	updated, missing, err := j.syncer.SyncPending(ctx)
	if err != nil {
		if errors.Is(err, service.ErrMirrorDisabled) {
			j.logger.Debug("invoice sync skipped, ERP mirror disabled")
			return
		}
		j.logger.Error("invoice sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if updated > 0 || missing > 0 {
		j.logger.Info("invoice sync completed",
			zap.Int("updated", updated),
			zap.Int("awaiting_mirror", missing),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterInvoiceSyncJob registers the invoice sync job with the scheduler.
// If runStartupSync is true, one pass runs immediately in a background
// goroutine so a backlog clears without waiting for the first cron tick.
func RegisterInvoiceSyncJob(scheduler *Scheduler, syncer InvoiceSyncer, logger *zap.Logger, cronExpr string, timeout time.Duration, runStartupSync bool) error {
	job := NewInvoiceSyncJob(syncer, logger, timeout)

	if runStartupSync {
		go job.Run()
	}

	return scheduler.AddJob(InvoiceSyncJobName, cronExpr, job.Run)
}
