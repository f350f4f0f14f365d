package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/istochnik/delivery-backend/internal/assignment"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

const defaultRetention = 30 * 24 * time.Hour

// StaleAssignmentJob prunes cancelled assignment rows past the retention
// window. Live rows are never touched; delivered history stays for reports.
type StaleAssignmentJob struct {
	repo      assignment.Repository
	logg      *logger.Logger
	retention time.Duration
	now       func() time.Time
}

// NewStaleAssignmentJob builds the job.
func NewStaleAssignmentJob(repo assignment.Repository, logg *logger.Logger, retention time.Duration, now func() time.Time) (*StaleAssignmentJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	if now == nil {
		now = time.Now
	}
	return &StaleAssignmentJob{repo: repo, logg: logg, retention: retention, now: now}, nil
}

func (j *StaleAssignmentJob) Name() string { return "stale_assignment_cleanup" }

func (j *StaleAssignmentJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	removed, err := j.repo.DeleteStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete stale assignments: %w", err)
	}
	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "stale assignments pruned")
	}
	return nil
}
