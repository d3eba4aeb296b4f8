package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/internal/statemachine"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

// LeaseService applies lease-level lifecycle changes
type LeaseService struct {
	repos    *repository.Repositories
	auditSvc *AuditService
}

func NewLeaseService(repos *repository.Repositories, auditSvc *AuditService) *LeaseService {
	return &LeaseService{repos: repos, auditSvc: auditSvc}
}

// Get returns a lease with its participations
func (s *LeaseService) Get(ctx context.Context, id uint) (*models.Lease, error) {
	lease, err := s.repos.Lease.FindByIDWithParticipations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lease %d: %w", id, err)
	}
	return lease, nil
}

// Cancel cancels every unpaid installment of the lease and then the lease itself.
// Paid installments are left untouched.
func (s *LeaseService) Cancel(ctx context.Context, leaseID uint) (*models.Lease, int, error) {
	var lease *models.Lease
	cancelled := 0

	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		var err error
		lease, err = tx.Lease.FindByIDForUpdate(ctx, leaseID)
		if err != nil {
			return fmt.Errorf("lease %d: %w", leaseID, err)
		}
		if !lease.MayCancel() {
			return fmt.Errorf("%w: lease %d is %s", ErrInvalidState, leaseID, lease.Status)
		}

		payments, err := tx.Payment.FindByLease(ctx, leaseID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		for i := range payments {
			payment := &payments[i]
			if !payment.MayCancel() {
				continue
			}
			if err := statemachine.NewPaymentFSM(payment).Cancel(ctx); err != nil {
				return err
			}
			if err := tx.Payment.Update(ctx, payment); err != nil {
				return fmt.Errorf("failed to cancel payment %d: %w", payment.ID, err)
			}
			cancelled++
		}

		if err := statemachine.NewLeaseFSM(lease).Cancel(ctx); err != nil {
			return err
		}
		return tx.Lease.UpdateStatus(ctx, lease.ID, lease.Status)
	})
	if err != nil {
		return nil, 0, err
	}

	logger.Info("Lease cancelled", "lease_id", leaseID, "payments_cancelled", cancelled)
	s.auditSvc.Log(ctx, models.AuditActionCancel, "Lease", leaseID, "%d unpaid installments cancelled", cancelled)
	return lease, cancelled, nil
}

// CheckFinalize finalizes the lease when every installment is paid
func (s *LeaseService) CheckFinalize(ctx context.Context, leaseID uint) (bool, error) {
	var finalized bool
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		var err error
		finalized, err = s.finalizeIfPaid(ctx, tx, leaseID)
		return err
	})
	return finalized, err
}

// finalizeIfPaid reads the lease's payments afresh inside tx. Cancelled and
// already finalized leases are left as they are.
func (s *LeaseService) finalizeIfPaid(ctx context.Context, tx *repository.Repositories, leaseID uint) (bool, error) {
	lease, err := tx.Lease.FindByIDForUpdate(ctx, leaseID)
	if err != nil {
		return false, fmt.Errorf("lease %d: %w", leaseID, err)
	}
	if !lease.MayFinalize() {
		return false, nil
	}

	payments, err := tx.Payment.FindByLease(ctx, leaseID)
	if err != nil {
		return false, fmt.Errorf("failed to load payments: %w", err)
	}
	if !allPaid(payments) {
		return false, nil
	}

	if err := statemachine.NewLeaseFSM(lease).Finalize(ctx); err != nil {
		return false, err
	}
	if err := tx.Lease.UpdateStatus(ctx, lease.ID, lease.Status); err != nil {
		return false, err
	}

	logger.Info("Lease finalized", "lease_id", leaseID)
	s.auditSvc.Log(ctx, models.AuditActionFinalize, "Lease", leaseID, "all %d installments paid", len(payments))
	return true, nil
}

// CloseEnded settles an active lease past its end date: finalized when every
// installment is paid, overdue otherwise. It returns the resulting status.
func (s *LeaseService) CloseEnded(ctx context.Context, leaseID uint) (string, error) {
	var status string
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		lease, err := tx.Lease.FindByIDForUpdate(ctx, leaseID)
		if err != nil {
			return fmt.Errorf("lease %d: %w", leaseID, err)
		}
		payments, err := tx.Payment.FindByLease(ctx, leaseID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}

		fsm := statemachine.NewLeaseFSM(lease)
		if allPaid(payments) {
			err = fsm.Finalize(ctx)
		} else {
			err = fsm.Expire(ctx)
		}
		if err != nil {
			return err
		}
		status = lease.Status
		return tx.Lease.UpdateStatus(ctx, lease.ID, lease.Status)
	})
	if err != nil {
		return "", err
	}

	s.auditSvc.Log(ctx, models.AuditActionFinalize, "Lease", leaseID, "lease ended as %s", status)
	return status, nil
}

func allPaid(payments []models.Payment) bool {
	if len(payments) == 0 {
		return false
	}
	for _, p := range payments {
		if p.Status != models.PaymentStatusPaid {
			return false
		}
	}
	return true
}
