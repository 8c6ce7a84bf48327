// internal/app/system/workers/auditsweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/acadhub/quizhub/internal/app/system/tasks"
	"go.uber.org/zap"
)

// AuditSweep is a background worker that runs a periodic job, used for
// the hierarchy drift scan.
type AuditSweep struct {
	job    tasks.Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewAuditSweep creates a worker around the given job.
func NewAuditSweep(job tasks.Job, logger *zap.Logger) *AuditSweep {
	return &AuditSweep{
		job:    job,
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *AuditSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("audit sweep worker started",
		zap.String("job", w.job.Name),
		zap.Duration("interval", w.job.Interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *AuditSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("audit sweep worker stopped", zap.String("job", w.job.Name))
}

func (w *AuditSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *AuditSweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := w.job.Run(ctx); err != nil {
		w.log.Error("audit sweep failed",
			zap.String("job", w.job.Name), zap.Error(err))
	}
}
