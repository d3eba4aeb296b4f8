package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/calc"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

var monthsPerYear = decimal.NewFromInt(12)

// ScheduleService generates the installment schedule of a lease
type ScheduleService struct {
	repos    *repository.Repositories
	clock    Clock
	auditSvc *AuditService
}

func NewScheduleService(repos *repository.Repositories, clock Clock, auditSvc *AuditService) *ScheduleService {
	return &ScheduleService{repos: repos, clock: clock, auditSvc: auditSvc}
}

// Generate builds and stores every installment of the lease in one
// transaction. A lease can only be scheduled once.
func (s *ScheduleService) Generate(ctx context.Context, leaseID uint) ([]models.Payment, error) {
	var payments []models.Payment

	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Lease.FindByIDForUpdate(ctx, leaseID); err != nil {
			return fmt.Errorf("lease %d: %w", leaseID, err)
		}
		lease, err := tx.Lease.FindByIDWithParticipations(ctx, leaseID)
		if err != nil {
			return fmt.Errorf("lease %d: %w", leaseID, err)
		}
		if lease.Status != models.LeaseStatusActive {
			return fmt.Errorf("%w: lease %d is %s", ErrInvalidState, leaseID, lease.Status)
		}

		count, err := tx.Payment.CountByLease(ctx, leaseID)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: lease %d has %d payments", ErrAlreadyScheduled, leaseID, count)
		}

		payments, err = BuildSchedule(lease, lease.Participations, s.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Payment.CreateBatch(ctx, payments); err != nil {
			return fmt.Errorf("failed to store schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Schedule generated", "lease_id", leaseID, "payments", len(payments))
	s.auditSvc.Log(ctx, models.AuditActionSchedule, "Lease", leaseID, "%d installments generated", len(payments))
	return payments, nil
}

// BuildSchedule computes the installments of a lease without touching storage.
// It returns one payment per participation and due date, participation by
// participation, each in due date order.
func BuildSchedule(lease *models.Lease, participations []models.Participation, now time.Time) ([]models.Payment, error) {
	months, ok := lease.TermMonths()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, lease.PaymentTerm)
	}
	if len(participations) == 0 {
		return nil, fmt.Errorf("%w: lease %d", ErrNoParticipations, lease.ID)
	}

	start := calc.DateOnly(lease.StartDate)
	end := calc.DateOnly(lease.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: lease %d", ErrInvalidDates, lease.ID)
	}

	dueDates := DueDates(start, end, months)
	day := calc.DateOnly(now)

	var policy *string
	if lease.IsFixed() && lease.AveragingPolicy != "" {
		p := lease.AveragingPolicy
		policy = &p
	}

	payments := make([]models.Payment, 0, len(dueDates)*len(participations))
	for _, participation := range participations {
		var quintals, percentage decimal.NullDecimal
		if lease.IsFixed() {
			quintals = decimal.NewNullDecimal(InstallmentQuintals(participation.HectaresAssigned, participation.QuintalsPerHectare, months))
		} else {
			percentage = decimal.NewNullDecimal(InstallmentPercentage(sharePercentage(lease, participation), months))
		}

		for _, due := range dueDates {
			status := models.PaymentStatusPending
			if due.Before(day) {
				status = models.PaymentStatusOverdue
			}
			payments = append(payments, models.Payment{
				LeaseID:         lease.ID,
				ParticipationID: participation.ID,
				DueDate:         due,
				Status:          status,
				Quintals:        quintals,
				Percentage:      percentage,
				AveragingPolicy: policy,
				PriceSource:     lease.PriceSource,
			})
		}
	}

	return payments, nil
}

// DueDates returns start, start+months, start+2*months... up to and including end.
// Each date is derived from start so the day of month survives short months.
func DueDates(start, end time.Time, months int) []time.Time {
	var dates []time.Time
	for k := 0; ; k++ {
		due := calc.AddMonths(start, k*months)
		if due.After(end) {
			return dates
		}
		dates = append(dates, due)
	}
}

// InstallmentQuintals is the per-installment quantity of a fixed lease:
// hectares × yearly rate ÷ 12 × months, rounded to two decimals.
func InstallmentQuintals(hectares, ratePerHectare decimal.Decimal, months int) decimal.Decimal {
	yearly := hectares.Mul(ratePerHectare)
	return calc.Round2(yearly.Mul(decimal.NewFromInt(int64(months))).Div(monthsPerYear))
}

// InstallmentPercentage is the per-installment share of a share lease:
// percentage ÷ installments per year, rounded to two decimals.
func InstallmentPercentage(percentage decimal.Decimal, months int) decimal.Decimal {
	perYear := decimal.NewFromInt(int64(12 / months))
	return calc.Round2(percentage.Div(perYear))
}

// sharePercentage falls back to the lease-wide share when the participation has none
func sharePercentage(lease *models.Lease, participation models.Participation) decimal.Decimal {
	if participation.Percentage.Valid {
		return participation.Percentage.Decimal
	}
	if lease.SharePercentage.Valid {
		return lease.SharePercentage.Decimal
	}
	return decimal.Zero
}
