package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/arrendamientos-api/internal/calc"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

// Batch job names
const (
	JobOverdueSweep    = "overdue_sweep"
	JobMonthlyPricing  = "monthly_pricing"
	JobMidMonthPricing = "mid_month_pricing"
	JobLeaseExpiry     = "lease_expiry"
)

// JobNames lists every sweep in the order the daily run executes them
var JobNames = []string{JobOverdueSweep, JobLeaseExpiry, JobMonthlyPricing, JobMidMonthPricing}

// midMonthFirstDay is the first day on which the 10th to 15th window is complete
const midMonthFirstDay = 16

// SweepObserver receives the outcome of every sweep run
type SweepObserver interface {
	ObserveSweep(job string, processed, succeeded, failed, skipped int, elapsed time.Duration)
}

// SweepFailure identifies an item a sweep could not process
type SweepFailure struct {
	ID     uint   `json:"id"`
	Reason string `json:"reason"`
}

// SweepReport summarizes one sweep run
type SweepReport struct {
	RunID     string         `json:"run_id"`
	Job       string         `json:"job"`
	AsOf      string         `json:"as_of"`
	Processed int            `json:"processed"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
	Failures  []SweepFailure `json:"failures,omitempty"`
}

// SweepService runs the batch entry points invoked by the scheduler. One item
// failing is logged and counted; the sweep goes on with the rest.
type SweepService struct {
	repos      *repository.Repositories
	paymentSvc *PaymentService
	leaseSvc   *LeaseService
	clock      Clock
	observer   SweepObserver
}

func NewSweepService(repos *repository.Repositories, paymentSvc *PaymentService, leaseSvc *LeaseService, clock Clock, observer SweepObserver) *SweepService {
	return &SweepService{
		repos:      repos,
		paymentSvc: paymentSvc,
		leaseSvc:   leaseSvc,
		clock:      clock,
		observer:   observer,
	}
}

// Run dispatches a sweep by job name
func (s *SweepService) Run(ctx context.Context, job string) (*SweepReport, error) {
	switch job {
	case JobOverdueSweep:
		return s.RunDailyOverdueSweep(ctx)
	case JobMonthlyPricing:
		return s.RunMonthlyPricingSweep(ctx)
	case JobMidMonthPricing:
		return s.RunMidMonthPricingSweep(ctx)
	case JobLeaseExpiry:
		return s.RunLeaseExpirySweep(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown job %q", ErrInvalidInput, job)
	}
}

// RunDailyOverdueSweep marks overdue every pending installment due before yesterday
func (s *SweepService) RunDailyOverdueSweep(ctx context.Context) (*SweepReport, error) {
	day := today(s.clock)
	cutoff := day.AddDate(0, 0, -1)

	return s.run(ctx, JobOverdueSweep, day, func(ctx context.Context, report *SweepReport) error {
		payments, err := s.repos.Payment.FindPendingDueBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to load pending payments: %w", err)
		}
		for _, p := range payments {
			changed, err := s.paymentSvc.MarkOverdue(ctx, p.ID)
			report.record(p.ID, changed, err)
		}
		return nil
	})
}

// RunMonthlyPricingSweep prices this month's unpriced installments whose
// policy averages the previous month
func (s *SweepService) RunMonthlyPricingSweep(ctx context.Context) (*SweepReport, error) {
	day := today(s.clock)
	return s.run(ctx, JobMonthlyPricing, day, func(ctx context.Context, report *SweepReport) error {
		return s.priceDue(ctx, report, day, func(p *models.Payment) bool {
			return p.Policy() != models.AveragingDays10To15
		})
	})
}

// RunMidMonthPricingSweep prices this month's unpriced installments that
// average the 10th to 15th of the month. It refuses to run before the 16th.
func (s *SweepService) RunMidMonthPricingSweep(ctx context.Context) (*SweepReport, error) {
	day := today(s.clock)
	if day.Day() < midMonthFirstDay {
		return nil, fmt.Errorf("%w: mid-month pricing runs from day %d, today is %s", ErrInvalidState, midMonthFirstDay, day.Format(models.DateLayout))
	}
	return s.run(ctx, JobMidMonthPricing, day, func(ctx context.Context, report *SweepReport) error {
		return s.priceDue(ctx, report, day, func(p *models.Payment) bool {
			return p.Policy() == models.AveragingDays10To15
		})
	})
}

// RunLeaseExpirySweep closes active leases whose end date has passed
func (s *SweepService) RunLeaseExpirySweep(ctx context.Context) (*SweepReport, error) {
	day := today(s.clock)
	return s.run(ctx, JobLeaseExpiry, day, func(ctx context.Context, report *SweepReport) error {
		leases, err := s.repos.Lease.FindActiveEndedBefore(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to load ended leases: %w", err)
		}
		for _, l := range leases {
			_, err := s.leaseSvc.CloseEnded(ctx, l.ID)
			report.record(l.ID, true, err)
		}
		return nil
	})
}

func (s *SweepService) priceDue(ctx context.Context, report *SweepReport, day time.Time, eligible func(*models.Payment) bool) error {
	from := calc.MonthStart(day)
	payments, err := s.repos.Payment.FindUnpricedDueBetween(ctx, from, calc.AddMonths(from, 1))
	if err != nil {
		return fmt.Errorf("failed to load unpriced payments: %w", err)
	}
	for i := range payments {
		if !eligible(&payments[i]) {
			continue
		}
		_, err := s.paymentSvc.PriceInstallment(ctx, payments[i].ID)
		report.record(payments[i].ID, true, err)
	}
	return nil
}

func (s *SweepService) run(ctx context.Context, job string, day time.Time, body func(context.Context, *SweepReport) error) (*SweepReport, error) {
	ctx = WithActor(ctx, ActorFrom(ctx, models.ActorScheduler))
	report := &SweepReport{
		RunID: uuid.NewString(),
		Job:   job,
		AsOf:  day.Format(models.DateLayout),
	}
	ctx = logger.WithContext(ctx, "job", job, "run_id", report.RunID)
	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info("[Sweep] Starting", "as_of", report.AsOf)

	if err := body(ctx, report); err != nil {
		log.Error("[Sweep] Aborted", "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	for _, f := range report.Failures {
		log.Warn("[Sweep] Item failed", "id", f.ID, "reason", f.Reason)
	}
	log.Info("[Sweep] Finished",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"elapsed", elapsed,
	)
	if s.observer != nil {
		s.observer.ObserveSweep(job, report.Processed, report.Succeeded, report.Failed, report.Skipped, elapsed)
	}
	return report, nil
}

func (r *SweepReport) record(id uint, changed bool, err error) {
	r.Processed++
	switch {
	case err != nil:
		r.Failed++
		r.Failures = append(r.Failures, SweepFailure{ID: id, Reason: err.Error()})
	case !changed:
		r.Skipped++
	default:
		r.Succeeded++
	}
}
