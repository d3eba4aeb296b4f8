package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/arrendamientos-api/internal/models"
)

// LeaseFSM wraps a lease with its state machine
type LeaseFSM struct {
	lease *models.Lease
	fsm   *fsm.FSM
}

// NewLeaseFSM creates a new lease state machine
func NewLeaseFSM(lease *models.Lease) *LeaseFSM {
	lfsm := &LeaseFSM{lease: lease}

	lfsm.fsm = fsm.NewFSM(
		lease.Status,
		fsm.Events{
			{Name: "finalize", Src: []string{models.LeaseStatusActive, models.LeaseStatusOverdue}, Dst: models.LeaseStatusFinalized},
			{Name: "cancel", Src: []string{models.LeaseStatusActive, models.LeaseStatusOverdue}, Dst: models.LeaseStatusCancelled},
			// ended with unpaid installments
			{Name: "expire", Src: []string{models.LeaseStatusActive}, Dst: models.LeaseStatusOverdue},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Finalize closes a fully paid lease
func (l *LeaseFSM) Finalize(ctx context.Context) error {
	if !l.lease.MayFinalize() {
		return fmt.Errorf("%w: lease %d cannot be finalized from %s", ErrInvalidTransition, l.lease.ID, l.lease.Status)
	}
	return l.fire(ctx, "finalize")
}

// Cancel terminates the lease
func (l *LeaseFSM) Cancel(ctx context.Context) error {
	if !l.lease.MayCancel() {
		return fmt.Errorf("%w: lease %d cannot be cancelled from %s", ErrInvalidTransition, l.lease.ID, l.lease.Status)
	}
	return l.fire(ctx, "cancel")
}

// Expire flags an ended lease that still has unpaid installments
func (l *LeaseFSM) Expire(ctx context.Context) error {
	if !l.lease.MayExpire() {
		return fmt.Errorf("%w: lease %d cannot expire from %s", ErrInvalidTransition, l.lease.ID, l.lease.Status)
	}
	return l.fire(ctx, "expire")
}

func (l *LeaseFSM) fire(ctx context.Context, event string) error {
	if err := l.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTransition, event, err)
	}
	l.lease.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LeaseFSM) Current() string {
	return l.fsm.Current()
}
