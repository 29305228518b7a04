package jobs

import (
	"context"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// Cleaner drops expired in-process entries
type Cleaner interface {
	CleanStale() int
}

// MemoCleanupJob evicts expired what-if results
type MemoCleanupJob struct {
	memo   Cleaner
	logger *logger.Logger
}

// NewMemoCleanupJob creates a new memo cleanup job
func NewMemoCleanupJob(memo Cleaner, log *logger.Logger) *MemoCleanupJob {
	return &MemoCleanupJob{
		memo:   memo,
		logger: log,
	}
}

// Name returns the job name
func (j *MemoCleanupJob) Name() string {
	return "memo_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *MemoCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cleanup
func (j *MemoCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled memo cleanup")

	count := j.memo.CleanStale()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Memo cleanup completed")
	}

	return nil
}
