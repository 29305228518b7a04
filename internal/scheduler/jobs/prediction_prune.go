package jobs

import (
	"context"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// Pruner deletes old prediction log rows
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// PredictionPruneJob keeps the prediction log inside the retention window
type PredictionPruneJob struct {
	service   Pruner
	retention time.Duration
	logger    *logger.Logger
}

// NewPredictionPruneJob creates the prune job
func NewPredictionPruneJob(service Pruner, retention time.Duration, log *logger.Logger) *PredictionPruneJob {
	return &PredictionPruneJob{
		service:   service,
		retention: retention,
		logger:    log,
	}
}

// Name returns the job name
func (j *PredictionPruneJob) Name() string {
	return "prediction_prune"
}

// Schedule returns the cron schedule (top of every hour)
func (j *PredictionPruneJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the prune
func (j *PredictionPruneJob) Run(ctx context.Context) error {
	removed, err := j.service.Prune(ctx, j.retention)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logger.WithField("removed", removed).Debug("Prediction prune done")
	}
	return nil
}
