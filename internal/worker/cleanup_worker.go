package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
)

// AuditSweeper removes audit entries past the retention window.
type AuditSweeper interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionSweeper removes mirrored session records whose expiry has passed.
type SessionSweeper interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// CleanupWorker runs the scheduled retention sweeps: audit log entries older
// than the retention window and stale session record mirrors.
type CleanupWorker struct {
	cron      *cron.Cron
	schedule  string
	retention time.Duration
	audit     AuditSweeper
	sessions  SessionSweeper
	log       *logger.Logger
}

// NewCleanupWorker creates the cleanup worker. Either sweeper may be nil
// when its backing store is not configured.
func NewCleanupWorker(schedule string, retention time.Duration, audit AuditSweeper, sessions SessionSweeper) *CleanupWorker {
	return &CleanupWorker{
		cron:      cron.New(),
		schedule:  schedule,
		retention: retention,
		audit:     audit,
		sessions:  sessions,
		log:       logger.Get(),
	}
}

// Start registers the sweep on the configured cron schedule.
func (w *CleanupWorker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.sweep); err != nil {
		return err
	}
	w.cron.Start()
	w.log.Info("Cleanup worker scheduled", zap.String("schedule", w.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (w *CleanupWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.log.Info("Cleanup worker stopped")
}

func (w *CleanupWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now()

	if w.audit != nil {
		cutoff := now.Add(-w.retention)
		deleted, err := w.audit.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			w.log.Error("Audit retention sweep failed", zap.Error(err))
		} else if deleted > 0 {
			w.log.Info("Audit retention sweep completed",
				zap.Int64("deleted", deleted),
				zap.Time("cutoff", cutoff),
			)
		}
	}

	if w.sessions != nil {
		purged, err := w.sessions.PurgeExpired(ctx, now)
		if err != nil {
			w.log.Error("Session mirror sweep failed", zap.Error(err))
		} else if purged > 0 {
			w.log.Info("Session mirror sweep completed", zap.Int("purged", purged))
		}
	}
}
