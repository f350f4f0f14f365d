package cron

import (
	"context"
	"fmt"

	"github.com/istochnik/delivery-backend/internal/districts"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

// DistrictSyncJob fires the workflow-automation webhook on schedule so the
// district dictionary stays aligned with the CRM even when nobody presses
// the sync button.
type DistrictSyncJob struct {
	districts districts.Service
	logg      *logger.Logger
}

// NewDistrictSyncJob builds the job.
func NewDistrictSyncJob(svc districts.Service, logg *logger.Logger) (*DistrictSyncJob, error) {
	if svc == nil {
		return nil, fmt.Errorf("districts service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &DistrictSyncJob{districts: svc, logg: logg}, nil
}

func (j *DistrictSyncJob) Name() string { return "district_sync_trigger" }

func (j *DistrictSyncJob) Run(ctx context.Context) error {
	ack, err := j.districts.TriggerSync(ctx)
	if err != nil {
		return fmt.Errorf("trigger district sync: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "ack", ack), "district sync triggered")
	return nil
}
