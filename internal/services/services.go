package services

import (
	"github.com/sjperalta/arrendamientos-api/internal/config"
	"github.com/sjperalta/arrendamientos-api/internal/jobs"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Audit     *AuditService
	Setting   *SettingService
	Price     *PriceService
	Schedule  *ScheduleService
	Averaging *AveragingService
	Valuation *ValuationService
	Retention *RetentionService
	Lease     *LeaseService
	Payment   *PaymentService
	Sweep     *SweepService
	Job       *JobService
}

// NewServices creates all service instances. worker may be nil for one-shot
// processes that never enqueue background work.
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, clock Clock, observer SweepObserver) *Services {
	auditSvc := NewAuditService(repos.Audit)
	settingSvc := NewSettingService(repos.Setting)
	averagingSvc := NewAveragingService(repos.Price, cfg.PriceLookbackMonths)
	valuationSvc := NewValuationService(averagingSvc)
	retentionSvc := NewRetentionService(settingSvc)
	leaseSvc := NewLeaseService(repos, auditSvc)
	paymentSvc := NewPaymentService(repos, valuationSvc, retentionSvc, leaseSvc, auditSvc, clock)
	sweepSvc := NewSweepService(repos, paymentSvc, leaseSvc, clock, observer)

	return &Services{
		Audit:     auditSvc,
		Setting:   settingSvc,
		Price:     NewPriceService(repos.Price),
		Schedule:  NewScheduleService(repos, clock, auditSvc),
		Averaging: averagingSvc,
		Valuation: valuationSvc,
		Retention: retentionSvc,
		Lease:     leaseSvc,
		Payment:   paymentSvc,
		Sweep:     sweepSvc,
		Job:       NewJobService(worker, sweepSvc),
	}
}
