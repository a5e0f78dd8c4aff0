// Package worker contains the background processes of the console: the audit
// writer and the scheduled cleanup.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
)

// AuditStore persists audit entries in batches.
type AuditStore interface {
	InsertBatch(ctx context.Context, entries []domain.AuditEntry) error
}

// AuditWorkerConfig contains configuration for the audit worker
type AuditWorkerConfig struct {
	// QueueSize bounds the in-memory queue between gatekeeper and writer
	QueueSize int
	// FlushInterval is how often buffered entries are written out
	FlushInterval time.Duration
	// BatchSize flushes early once this many entries are buffered
	BatchSize int
}

// DefaultAuditWorkerConfig returns default configuration
func DefaultAuditWorkerConfig() *AuditWorkerConfig {
	return &AuditWorkerConfig{
		QueueSize:     1024,
		FlushInterval: 2 * time.Second,
		BatchSize:     100,
	}
}

// AuditWorker receives gatekeeper decisions over a bounded channel and
// writes them to the audit store in batches. Enqueueing never blocks: when
// the queue is full the entry is dropped and counted, so a slow database
// can never slow a navigation down.
type AuditWorker struct {
	store   AuditStore
	config  *AuditWorkerConfig
	log     *logger.Logger
	queue   chan domain.AuditEntry
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	// Stats
	totalWritten int64
	totalDropped int64
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(store AuditStore, config *AuditWorkerConfig) *AuditWorker {
	if config == nil {
		config = DefaultAuditWorkerConfig()
	}
	return &AuditWorker{
		store:  store,
		config: config,
		log:    logger.Get(),
		queue:  make(chan domain.AuditEntry, config.QueueSize),
		stopCh: make(chan struct{}),
	}
}

// Record enqueues one entry without blocking.
func (w *AuditWorker) Record(entry domain.AuditEntry) {
	select {
	case w.queue <- entry:
	default:
		w.mu.Lock()
		w.totalDropped++
		w.mu.Unlock()
		w.log.Warn("audit queue full, dropping entry", zap.String("path", entry.Path))
	}
}

// Start starts the audit worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("audit worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting audit worker")

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop drains the queue and stops the worker
func (w *AuditWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping audit worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Audit worker stopped")
}

func (w *AuditWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]domain.AuditEntry, 0, w.config.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.store.InsertBatch(writeCtx, batch); err != nil {
			w.log.Error("Failed to write audit batch",
				zap.Int("entries", len(batch)),
				zap.Error(err),
			)
		} else {
			w.mu.Lock()
			w.totalWritten += int64(len(batch))
			w.mu.Unlock()
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.stopCh:
			// Drain what is still queued before exiting.
			for {
				select {
				case entry := <-w.queue:
					batch = append(batch, entry)
					if len(batch) >= w.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case entry := <-w.queue:
			batch = append(batch, entry)
			if len(batch) >= w.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Stats returns worker statistics
func (w *AuditWorker) Stats() (written, dropped int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalWritten, w.totalDropped
}
