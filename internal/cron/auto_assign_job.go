package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/istochnik/delivery-backend/internal/assignment"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

// AutoAssignJob backfills vehicle assignments for orders the resolver has
// not seen yet. It covers today and tomorrow so late-evening CRM syncs get
// picked up before the morning shift.
type AutoAssignJob struct {
	assignments assignment.Service
	logg        *logger.Logger
	now         func() time.Time
}

// NewAutoAssignJob builds the job.
func NewAutoAssignJob(assignments assignment.Service, logg *logger.Logger, now func() time.Time) (*AutoAssignJob, error) {
	if assignments == nil {
		return nil, fmt.Errorf("assignment service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &AutoAssignJob{assignments: assignments, logg: logg, now: now}, nil
}

func (j *AutoAssignJob) Name() string { return "auto_assign_backfill" }

func (j *AutoAssignJob) Run(ctx context.Context) error {
	today := truncateToDay(j.now())

	var errs error
	for _, date := range []time.Time{today, today.AddDate(0, 0, 1)} {
		result, err := j.assignments.AutoAssign(ctx, date)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("auto-assign %s: %w", date.Format("2006-01-02"), err))
			continue
		}
		dayCtx := j.logg.WithFields(ctx, map[string]any{
			"date":      date.Format("2006-01-02"),
			"processed": result.Processed,
			"assigned":  result.Assigned,
			"skipped":   result.Skipped,
			"no_region": result.NoRegion,
		})
		j.logg.Info(dayCtx, "auto-assign pass complete")
	}
	return errs
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
