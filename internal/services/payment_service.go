package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/calc"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/internal/statemachine"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

// PaymentService prices, invoices and cancels installments
type PaymentService struct {
	repos        *repository.Repositories
	valuation    *ValuationService
	retentionSvc *RetentionService
	leaseSvc     *LeaseService
	auditSvc     *AuditService
	clock        Clock
}

func NewPaymentService(
	repos *repository.Repositories,
	valuation *ValuationService,
	retentionSvc *RetentionService,
	leaseSvc *LeaseService,
	auditSvc *AuditService,
	clock Clock,
) *PaymentService {
	return &PaymentService{
		repos:        repos,
		valuation:    valuation,
		retentionSvc: retentionSvc,
		leaseSvc:     leaseSvc,
		auditSvc:     auditSvc,
		clock:        clock,
	}
}

// Get returns a payment with its participation
func (s *PaymentService) Get(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repos.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("payment %d: %w", id, err)
	}
	return payment, nil
}

// ListByLease returns a page of a lease's installments
func (s *PaymentService) ListByLease(ctx context.Context, leaseID uint, query *repository.ListQuery) ([]models.Payment, int64, error) {
	if _, err := s.repos.Lease.FindByID(ctx, leaseID); err != nil {
		return nil, 0, fmt.Errorf("lease %d: %w", leaseID, err)
	}
	query.Filters["lease_id"] = strconv.FormatUint(uint64(leaseID), 10)
	return s.repos.Payment.List(ctx, query)
}

// List returns a page of installments across leases. A due_month filter
// (YYYY-MM) is expanded into the due_from/due_before range.
func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	if month := query.Filters["due_month"]; month != "" {
		from, err := parseMonth(month)
		if err != nil {
			return nil, 0, err
		}
		delete(query.Filters, "due_month")
		query.Filters["due_from"] = from.Format(models.DateLayout)
		query.Filters["due_before"] = calc.AddMonths(from, 1).Format(models.DateLayout)
	}
	if status := query.Filters["status"]; status != "" && !validPaymentStatus(status) {
		return nil, 0, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	for _, key := range []string{"landlord_id", "lease_id"} {
		if id := query.Filters[key]; id != "" {
			if _, err := strconv.ParseUint(id, 10, 32); err != nil {
				return nil, 0, fmt.Errorf("%w: %s %q", ErrInvalidInput, key, id)
			}
		}
	}
	return s.repos.Payment.List(ctx, query)
}

// DueSummary totals what each tenant owes in a month
type DueSummary struct {
	Month    string                        `json:"month"`
	Statuses []string                      `json:"statuses"`
	Tenants  []repository.TenantDueSummary `json:"tenants"`
	Payments int64                         `json:"payments"`
	Quintals decimal.Decimal               `json:"quintals"`
	Amount   decimal.Decimal               `json:"amount"`
}

// SummarizeDue groups the installments due in month by tenant. An empty
// month means the current one; no statuses means pending and overdue.
func (s *PaymentService) SummarizeDue(ctx context.Context, month string, statuses []string) (*DueSummary, error) {
	from := calc.MonthStart(today(s.clock))
	if month != "" {
		var err error
		if from, err = parseMonth(month); err != nil {
			return nil, err
		}
	}
	if len(statuses) == 0 {
		statuses = []string{models.PaymentStatusPending, models.PaymentStatusOverdue}
	}
	for _, status := range statuses {
		if !validPaymentStatus(status) {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
		}
	}

	rows, err := s.repos.Payment.SummarizeByTenant(ctx, from, calc.AddMonths(from, 1), statuses)
	if err != nil {
		return nil, fmt.Errorf("summarize payments due %s: %w", from.Format("2006-01"), err)
	}
	summary := &DueSummary{
		Month:    from.Format("2006-01"),
		Statuses: statuses,
		Tenants:  rows,
		Quintals: decimal.Zero,
		Amount:   decimal.Zero,
	}
	for _, row := range rows {
		summary.Payments += row.Payments
		summary.Quintals = summary.Quintals.Add(row.Quintals)
		summary.Amount = summary.Amount.Add(row.Amount)
	}
	return summary, nil
}

func parseMonth(month string) (time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q, expected YYYY-MM", ErrInvalidInput, month)
	}
	return t, nil
}

func validPaymentStatus(status string) bool {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusOverdue,
		models.PaymentStatusPaid, models.PaymentStatusCancelled:
		return true
	}
	return false
}

// Quotes returns the price quotes used to price a payment
func (s *PaymentService) Quotes(ctx context.Context, id uint) ([]models.PriceQuote, error) {
	if _, err := s.repos.Payment.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("payment %d: %w", id, err)
	}
	return s.repos.Payment.FindQuotes(ctx, id)
}

// GetInvoice returns the invoice issued for a payment
func (s *PaymentService) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	invoice, err := s.repos.Invoice.FindByPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice for payment %d: %w", id, err)
	}
	return invoice, nil
}

// PriceInstallment stores the unit price and amount of a quantity-based
// installment and records the quotes behind the average. Pricing twice fails
// with ErrAlreadyPriced.
func (s *PaymentService) PriceInstallment(ctx context.Context, id uint) (*models.Payment, error) {
	var payment *models.Payment
	var valuation *Valuation

	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		var err error
		payment, err = tx.Payment.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("payment %d: %w", id, err)
		}
		switch {
		case !payment.IsQuantityBased():
			return fmt.Errorf("%w: payment %d", ErrNotPriceable, id)
		case payment.IsPriced():
			return fmt.Errorf("%w: payment %d", ErrAlreadyPriced, id)
		case !payment.IsOpen():
			return fmt.Errorf("%w: payment %d is %s", ErrAlreadyPaidOrCancelled, id, payment.Status)
		}

		valuation, err = s.valuation.Value(ctx, payment)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		payment.UnitPrice = decimal.NewNullDecimal(valuation.UnitPrice)
		payment.Amount = decimal.NewNullDecimal(valuation.Amount)
		payment.PricedAt = &now
		if err := tx.Payment.Update(ctx, payment); err != nil {
			return fmt.Errorf("failed to store price: %w", err)
		}
		if err := tx.Payment.AttachQuotes(ctx, payment.ID, valuation.Quotes); err != nil {
			return fmt.Errorf("failed to record quotes: %w", err)
		}
		payment.Quotes = valuation.Quotes
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Payment priced",
		"payment_id", id,
		"average", valuation.Average.String(),
		"unit_price", valuation.UnitPrice.String(),
		"amount", valuation.Amount.String(),
		"quotes", len(valuation.Quotes),
	)
	s.auditSvc.Log(ctx, models.AuditActionPrice, "Payment", id, "unit price %s, amount %s from %d quotes",
		valuation.UnitPrice.StringFixed(2), valuation.Amount.StringFixed(2), len(valuation.Quotes))
	return payment, nil
}

// Invoice settles an installment: it issues the invoice, withholds tax for
// landlords that are not exempt, marks the payment paid and finalizes the
// lease when nothing is left to pay.
func (s *PaymentService) Invoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice *models.Invoice

	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		payment, err := tx.Payment.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("payment %d: %w", id, err)
		}
		if !payment.MayPay() {
			return fmt.Errorf("%w: payment %d is %s", ErrAlreadyPaidOrCancelled, id, payment.Status)
		}
		if payment.IsQuantityBased() && !payment.Amount.Valid {
			return fmt.Errorf("%w: payment %d", ErrNotYetPriced, id)
		}

		lease, err := tx.Lease.FindByID(ctx, payment.LeaseID)
		if err != nil {
			return fmt.Errorf("lease %d: %w", payment.LeaseID, err)
		}
		participation, err := tx.Lease.FindParticipation(ctx, payment.ParticipationID)
		if err != nil {
			return fmt.Errorf("participation %d: %w", payment.ParticipationID, err)
		}
		landlord, err := tx.Landlord.FindByID(ctx, participation.LandlordID)
		if err != nil {
			return fmt.Errorf("landlord %d: %w", participation.LandlordID, err)
		}

		now := s.clock.Now()
		invoice, err = s.issueInvoice(ctx, tx, payment, lease, landlord, now)
		if err != nil {
			return err
		}

		if err := statemachine.NewPaymentFSM(payment).Pay(ctx); err != nil {
			return err
		}
		payment.PaidAt = &now
		if err := tx.Payment.Update(ctx, payment); err != nil {
			return fmt.Errorf("failed to mark payment paid: %w", err)
		}

		_, err = s.leaseSvc.finalizeIfPaid(ctx, tx, payment.LeaseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Payment invoiced", "payment_id", id, "invoice_id", invoice.ID, "type", invoice.Type, "amount", invoice.Amount.String())
	s.auditSvc.Log(ctx, models.AuditActionInvoice, "Payment", id, "invoice %d type %s amount %s",
		invoice.ID, invoice.Type, invoice.Amount.StringFixed(2))
	return invoice, nil
}

func (s *PaymentService) issueInvoice(ctx context.Context, tx *repository.Repositories, payment *models.Payment, lease *models.Lease, landlord *models.Landlord, now time.Time) (*models.Invoice, error) {
	invoice := &models.Invoice{
		PaymentID:  payment.ID,
		LandlordID: landlord.ID,
		Date:       calc.DateOnly(now),
		Type:       models.InvoiceTypeA,
		Amount:     decimal.Zero,
	}
	if landlord.IsTaxExempt() {
		invoice.Type = models.InvoiceTypeC
	}

	// share installments are settled against the harvest, not priced
	if !payment.IsQuantityBased() {
		return invoice, s.createInvoice(ctx, tx, invoice)
	}

	gross := payment.Amount.Decimal
	if landlord.IsTaxExempt() {
		invoice.Amount = gross
		return invoice, s.createInvoice(ctx, tx, invoice)
	}

	months, ok := lease.TermMonths()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, lease.PaymentTerm)
	}
	retention, err := s.retentionSvc.ComputeForInvoice(ctx, payment, landlord.ID, months, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Retention.Create(ctx, retention); err != nil {
		return nil, fmt.Errorf("failed to store retention: %w", err)
	}

	invoice.Amount = gross.Sub(retention.Amount)
	if err := s.createInvoice(ctx, tx, invoice); err != nil {
		return nil, err
	}
	if err := tx.Retention.AssignInvoice(ctx, retention.ID, invoice.ID); err != nil {
		return nil, fmt.Errorf("failed to link retention: %w", err)
	}
	retention.InvoiceID = &invoice.ID
	invoice.Retention = retention
	return invoice, nil
}

func (s *PaymentService) createInvoice(ctx context.Context, tx *repository.Repositories, invoice *models.Invoice) error {
	if err := tx.Invoice.Create(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: payment %d already invoiced", ErrAlreadyPaidOrCancelled, invoice.PaymentID)
		}
		return fmt.Errorf("failed to store invoice: %w", err)
	}
	return nil
}

// Cancel cancels a pending or overdue installment
func (s *PaymentService) Cancel(ctx context.Context, id uint) (*models.Payment, error) {
	var payment *models.Payment

	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		var err error
		payment, err = tx.Payment.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("payment %d: %w", id, err)
		}
		if !payment.MayCancel() {
			return fmt.Errorf("%w: payment %d is %s", ErrAlreadyPaidOrCancelled, id, payment.Status)
		}
		if err := statemachine.NewPaymentFSM(payment).Cancel(ctx); err != nil {
			return err
		}
		return tx.Payment.Update(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Payment cancelled", "payment_id", id)
	s.auditSvc.Log(ctx, models.AuditActionCancel, "Payment", id, "payment cancelled")
	return payment, nil
}

// MarkOverdue moves a pending installment to overdue. It reports false when
// the payment is no longer pending, which makes repeated sweeps harmless.
func (s *PaymentService) MarkOverdue(ctx context.Context, id uint) (bool, error) {
	changed := false
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		payment, err := tx.Payment.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("payment %d: %w", id, err)
		}
		if !payment.MayMarkOverdue() {
			return nil
		}
		if err := statemachine.NewPaymentFSM(payment).MarkOverdue(ctx); err != nil {
			return err
		}
		changed = true
		return tx.Payment.Update(ctx, payment)
	})
	if changed && err == nil {
		s.auditSvc.Log(ctx, models.AuditActionOverdue, "Payment", id, "payment overdue")
	}
	return changed, err
}
