// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/acadhub/quizhub/internal/app/audit"
	"go.uber.org/zap"
)

// Job is a named periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// DriftScanJob creates a job that scans the hierarchy for drift and
// logs what it finds. It never repairs; repairs are an operator action
// through the audit endpoints.
func DriftScanJob(auditor *audit.Auditor, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "hierarchy-drift-scan",
		Interval: interval,
		Run: func(ctx context.Context) error {
			var count int
			cur := auditor.Scan(ctx)
			for cur.Next(ctx) {
				rec := cur.Record()
				logger.Warn("hierarchy drift detected",
					zap.String("kind", rec.Kind),
					zap.String("detail", rec.Detail))
				count++
			}
			if err := cur.Err(); err != nil {
				return err
			}
			if count > 0 {
				logger.Info("drift scan finished", zap.Int("records", count))
			}
			return nil
		},
	}
}
