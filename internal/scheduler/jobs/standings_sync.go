package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/scheduler"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// deterministic failures: the same feed payload fails the same way again
var permanentRefreshErrors = []error{
	qualification.ErrInvalidInput,
	qualification.ErrComputationBounds,
	tournament.ErrInvalidSnapshot,
	tournament.ErrStaleSnapshot,
}

// Refresher is the part of the predictor service this job drives
type Refresher interface {
	Refresh(ctx context.Context) (*predictor.RefreshResult, error)
}

// StandingsSyncJob pulls the feed and recomputes qualification chances
type StandingsSyncJob struct {
	service  Refresher
	schedule string
	timeout  time.Duration
	logger   *logger.Logger
}

// NewStandingsSyncJob creates the sync job; schedule is FEED_SCHEDULE
func NewStandingsSyncJob(service Refresher, schedule string, log *logger.Logger) *StandingsSyncJob {
	return &StandingsSyncJob{
		service:  service,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   log,
	}
}

// Name returns the job name
func (j *StandingsSyncJob) Name() string {
	return "standings_sync"
}

// Schedule returns the cron schedule
func (j *StandingsSyncJob) Schedule() string {
	return j.schedule
}

// Run executes one sync
func (j *StandingsSyncJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	res, err := j.service.Refresh(ctx)
	if err != nil {
		for _, target := range permanentRefreshErrors {
			if errors.Is(err, target) {
				return scheduler.Permanent(err)
			}
		}
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"version": res.Version,
		"teams":   res.Teams,
	}).Debug("Scheduled standings sync done")
	return nil
}
