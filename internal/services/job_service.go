package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/sjperalta/arrendamientos-api/internal/jobs"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

type JobService struct {
	worker   *jobs.Worker
	sweepSvc *SweepService
}

func NewJobService(worker *jobs.Worker, sweepSvc *SweepService) *JobService {
	return &JobService{
		worker:   worker,
		sweepSvc: sweepSvc,
	}
}

// JobStatus is the worker state plus the sweeps that can be run on demand
type JobStatus struct {
	jobs.WorkerStats
	Jobs []string `json:"jobs"`
}

func (s *JobService) GetStatus() JobStatus {
	return JobStatus{
		WorkerStats: s.worker.GetStats(),
		Jobs:        JobNames,
	}
}

// Trigger runs a sweep in the background on behalf of an API caller. It
// fails with jobs.ErrJobRunning while the same sweep is still in flight.
func (s *JobService) Trigger(job string) error {
	if !slices.Contains(JobNames, job) {
		return fmt.Errorf("%w: unknown job %q", ErrInvalidInput, job)
	}
	return s.worker.Submit(job, func(ctx context.Context) error {
		ctx = WithActor(ctx, models.ActorAPI)
		report, err := s.sweepSvc.Run(ctx, job)
		if err != nil {
			return err
		}
		logger.Info("[Job] On-demand sweep finished", "job", job, "run_id", report.RunID, "failed", report.Failed)
		return nil
	})
}
