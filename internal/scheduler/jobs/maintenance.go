package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stogger/pkg/logger"
)

// DefaultRetentionSchedule runs daily at 03:30
const DefaultRetentionSchedule = "0 30 3 * * *"

// ReportPruner deletes stored reports older than a cutoff
type ReportPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportRetentionJob removes reports past the retention period
type ReportRetentionJob struct {
	pruner    ReportPruner
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewReportRetentionJob creates a new report retention job
func NewReportRetentionJob(pruner ReportPruner, retention time.Duration, log *logger.Logger) *ReportRetentionJob {
	return &ReportRetentionJob{
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *ReportRetentionJob) Name() string {
	return "report_retention"
}

// Schedule returns the cron schedule
func (j *ReportRetentionJob) Schedule() string {
	return DefaultRetentionSchedule
}

// Run executes the retention sweep
func (j *ReportRetentionJob) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return fmt.Errorf("report retention must be positive, got %s", j.retention)
	}

	cutoff := j.now().Add(-j.retention)
	j.logger.WithField("cutoff", cutoff.Format(time.RFC3339)).Debug("Starting report retention sweep")

	removed, err := j.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune reports: %w", err)
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Report retention completed")
	}

	return nil
}
