package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/arrendamientos-api/internal/models"
)

// ErrInvalidTransition is returned when an event is not allowed from the current state
var ErrInvalidTransition = errors.New("transición de estado inválida")

// PaymentFSM wraps a payment with its state machine
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending → overdue (daily sweep)
			{Name: "mark_overdue", Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusOverdue},

			// pending/overdue → paid (invoicing)
			{Name: "pay", Src: []string{models.PaymentStatusPending, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPaid},

			// pending/overdue → cancelled
			{Name: "cancel", Src: []string{models.PaymentStatusPending, models.PaymentStatusOverdue}, Dst: models.PaymentStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// MarkOverdue transitions payment to overdue state
func (p *PaymentFSM) MarkOverdue(ctx context.Context) error {
	if !p.payment.MayMarkOverdue() {
		return fmt.Errorf("%w: payment %d cannot become overdue from %s", ErrInvalidTransition, p.payment.ID, p.payment.Status)
	}
	return p.fire(ctx, "mark_overdue")
}

// Pay transitions payment to paid state
func (p *PaymentFSM) Pay(ctx context.Context) error {
	if !p.payment.MayPay() {
		return fmt.Errorf("%w: payment %d cannot be paid from %s", ErrInvalidTransition, p.payment.ID, p.payment.Status)
	}
	return p.fire(ctx, "pay")
}

// Cancel transitions payment to cancelled state
func (p *PaymentFSM) Cancel(ctx context.Context) error {
	if !p.payment.MayCancel() {
		return fmt.Errorf("%w: payment %d cannot be cancelled from %s", ErrInvalidTransition, p.payment.ID, p.payment.Status)
	}
	return p.fire(ctx, "cancel")
}

func (p *PaymentFSM) fire(ctx context.Context, event string) error {
	if err := p.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTransition, event, err)
	}
	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
