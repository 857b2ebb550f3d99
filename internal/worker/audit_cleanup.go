package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/solar-admin/pkg/logger"
)

// AuditPruner deletes audit rows older than a retention window.
type AuditPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

type AuditCleanupWorker struct {
	pruner          AuditPruner
	retention       time.Duration
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewAuditCleanupWorker(pruner AuditPruner, retention, cleanupInterval time.Duration, log *logger.Logger) *AuditCleanupWorker {
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuditCleanupWorker{
		pruner:          pruner,
		retention:       retention,
		cleanupInterval: cleanupInterval,
		logger:          log.With("component", "audit_cleanup"),
	}
}

// Start prunes once immediately, then on every tick until ctx is done.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		w.cleanup(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *AuditCleanupWorker) cleanup(ctx context.Context) {
	rows, err := w.pruner.Prune(ctx, w.retention)
	if err != nil {
		w.logger.Error(err, "failed to clean up audit logs")
		return
	}
	if rows > 0 {
		w.logger.Info("cleaned up audit logs", "rows", rows, "retention", w.retention.String())
	}
}
