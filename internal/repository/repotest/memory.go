// Package repotest provides in-memory repositories for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
)

// Store keeps every table in memory. Records are copied on the way in and out
// so callers cannot mutate stored rows without going through a repository.
type Store struct {
	mu sync.Mutex

	leases         map[uint]models.Lease
	participations map[uint]models.Participation
	landlords      map[uint]models.Landlord
	payments       map[uint]models.Payment
	paymentQuotes  map[uint][]uint
	quotes         map[uint]models.PriceQuote
	invoices       map[uint]models.Invoice
	retentions     map[uint]models.Retention
	settings       map[string]models.Setting
	audits         []models.AuditLog

	nextID uint

	// FindErr, when set, is returned by the sweep working-set queries.
	FindErr error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		leases:         make(map[uint]models.Lease),
		participations: make(map[uint]models.Participation),
		landlords:      make(map[uint]models.Landlord),
		payments:       make(map[uint]models.Payment),
		paymentQuotes:  make(map[uint][]uint),
		quotes:         make(map[uint]models.PriceQuote),
		invoices:       make(map[uint]models.Invoice),
		retentions:     make(map[uint]models.Retention),
		settings:       make(map[string]models.Setting),
	}
}

// Repositories returns repository implementations backed by the store
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Lease:     &leaseRepo{s},
		Landlord:  &landlordRepo{s},
		Payment:   &paymentRepo{s},
		Price:     &quoteRepo{s},
		Invoice:   &invoiceRepo{s},
		Retention: &retentionRepo{s},
		Setting:   &settingRepo{s},
		Audit:     &auditRepo{s},
		Tx:        &txManager{s},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// AddLandlord stores a landlord and returns its ID
func (s *Store) AddLandlord(l models.Landlord) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	s.landlords[l.ID] = l
	return l.ID
}

// AddLease stores a lease with its participations and returns the lease ID.
// Participation IDs are assigned in order.
func (s *Store) AddLease(l models.Lease) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	for i := range l.Participations {
		p := l.Participations[i]
		if p.ID == 0 {
			p.ID = s.id()
		}
		p.LeaseID = l.ID
		s.participations[p.ID] = p
		l.Participations[i] = p
	}
	stored := l
	stored.Participations = nil
	stored.Payments = nil
	s.leases[l.ID] = stored
	return l.ID
}

// AddPayment stores a payment and returns its ID
func (s *Store) AddPayment(p models.Payment) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	p.Quotes = nil
	p.Participation = models.Participation{}
	s.payments[p.ID] = p
	return p.ID
}

// AddQuote stores a price quote and returns its ID
func (s *Store) AddQuote(q models.PriceQuote) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == 0 {
		q.ID = s.id()
	}
	s.quotes[q.ID] = q
	return q.ID
}

// SetSetting stores a key/value setting
func (s *Store) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = models.Setting{Key: key, Value: value}
}

// Lease returns the stored lease
func (s *Store) Lease(id uint) models.Lease {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leases[id]
}

// Payment returns the stored payment
func (s *Store) Payment(id uint) models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[id]
}

// Payments returns all stored payments of a lease ordered by due date
func (s *Store) Payments(leaseID uint) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentsOf(leaseID)
}

// Invoices returns every stored invoice
func (s *Store) Invoices() []models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Retentions returns every stored retention
func (s *Store) Retentions() []models.Retention {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Retention, 0, len(s.retentions))
	for _, r := range s.retentions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// QuoteIDs returns the quotes attached to a payment
func (s *Store) QuoteIDs(paymentID uint) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.paymentQuotes[paymentID]...)
}

// AuditLogs returns the recorded audit trail
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.audits...)
}

func (s *Store) paymentsOf(leaseID uint) []models.Payment {
	var out []models.Payment
	for _, p := range s.payments {
		if p.LeaseID == leaseID {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out
}

func sortPayments(payments []models.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].DueDate.Equal(payments[j].DueDate) {
			return payments[i].DueDate.Before(payments[j].DueDate)
		}
		return payments[i].ID < payments[j].ID
	})
}

func paginate[T any](items []T, query *repository.ListQuery) []T {
	if query.PerPage <= 0 {
		return items
	}
	start := query.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + query.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type txManager struct{ s *Store }

// WithinTransaction runs fn directly against the store. Rollback is not emulated.
func (m *txManager) WithinTransaction(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	return fn(m.s.Repositories())
}

type leaseRepo struct{ s *Store }

func (r *leaseRepo) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *leaseRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Lease, error) {
	return r.FindByID(ctx, id)
}

func (r *leaseRepo) FindParticipation(ctx context.Context, id uint) (*models.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Landlord = r.s.landlords[p.LandlordID]
	return &p, nil
}

func (r *leaseRepo) FindByIDWithParticipations(ctx context.Context, id uint) (*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, p := range r.s.participations {
		if p.LeaseID == id {
			p.Landlord = r.s.landlords[p.LandlordID]
			l.Participations = append(l.Participations, p)
		}
	}
	sort.Slice(l.Participations, func(i, j int) bool { return l.Participations[i].ID < l.Participations[j].ID })
	return &l, nil
}

func (r *leaseRepo) FindActiveEndedBefore(ctx context.Context, date time.Time) ([]models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	var out []models.Lease
	for _, l := range r.s.leases {
		if l.Status == models.LeaseStatusActive && l.EndDate.Before(date) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *leaseRepo) Create(ctx context.Context, lease *models.Lease) error {
	lease.ID = r.s.AddLease(*lease)
	return nil
}

func (r *leaseRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leases[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	r.s.leases[id] = l
	return nil
}

type landlordRepo struct{ s *Store }

func (r *landlordRepo) FindByID(ctx context.Context, id uint) (*models.Landlord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.landlords[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Participation = r.s.participations[p.ParticipationID]
	return &p, nil
}

func (r *paymentRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepo) FindByLease(ctx context.Context, leaseID uint) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.paymentsOf(leaseID), nil
}

func (r *paymentRepo) CountByLease(ctx context.Context, leaseID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.paymentsOf(leaseID))), nil
}

func (r *paymentRepo) CreateBatch(ctx context.Context, payments []models.Payment) error {
	for i := range payments {
		payments[i].ID = r.s.AddPayment(payments[i])
	}
	return nil
}

func (r *paymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[payment.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *payment
	stored.Quotes = nil
	stored.Participation = models.Participation{}
	r.s.payments[payment.ID] = stored
	return nil
}

func (r *paymentRepo) AttachQuotes(ctx context.Context, paymentID uint, quotes []models.PriceQuote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range quotes {
		r.s.paymentQuotes[paymentID] = append(r.s.paymentQuotes[paymentID], q.ID)
	}
	return nil
}

func (r *paymentRepo) FindQuotes(ctx context.Context, paymentID uint) ([]models.PriceQuote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.PriceQuote
	for _, id := range r.s.paymentQuotes[paymentID] {
		out = append(out, r.s.quotes[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *paymentRepo) FindPendingDueBefore(ctx context.Context, date time.Time) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	var out []models.Payment
	for _, p := range r.s.payments {
		if p.Status == models.PaymentStatusPending && p.DueDate.Before(date) {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (r *paymentRepo) FindUnpricedDueBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	var out []models.Payment
	for _, p := range r.s.payments {
		if p.Status != models.PaymentStatusPending || !p.Quintals.Valid || p.IsPriced() {
			continue
		}
		if !p.DueDate.Before(from) && p.DueDate.Before(to) {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (r *paymentRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Payment
	for _, p := range r.s.payments {
		if id := query.Filters["lease_id"]; id != "" && strconv.FormatUint(uint64(p.LeaseID), 10) != id {
			continue
		}
		if status := query.Filters["status"]; status != "" && p.Status != status {
			continue
		}
		part := r.s.participations[p.ParticipationID]
		if id := query.Filters["landlord_id"]; id != "" && strconv.FormatUint(uint64(part.LandlordID), 10) != id {
			continue
		}
		due := p.DueDate.Format(models.DateLayout)
		if from := query.Filters["due_from"]; from != "" && due < from {
			continue
		}
		if before := query.Filters["due_before"]; before != "" && due >= before {
			continue
		}
		p.Participation = part
		out = append(out, p)
	}
	sortPayments(out)
	return paginate(out, query), int64(len(out)), nil
}

type quoteRepo struct{ s *Store }

func (r *quoteRepo) Create(ctx context.Context, quote *models.PriceQuote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.quotes {
		if q.Source == quote.Source && q.Date.Equal(quote.Date) {
			return repository.ErrDuplicate
		}
	}
	quote.ID = r.s.id()
	r.s.quotes[quote.ID] = *quote
	return nil
}

func (r *quoteRepo) Find(ctx context.Context, filter repository.QuoteFilter) ([]models.PriceQuote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.PriceQuote
	for _, q := range r.s.quotes {
		if q.Source != filter.Source {
			continue
		}
		if !filter.From.IsZero() && q.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !q.Date.Before(filter.To) {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.NewestFirst {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *quoteRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.PriceQuote, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.PriceQuote
	for _, q := range r.s.quotes {
		if source := query.Filters["source"]; source != "" && q.Source != source {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return paginate(out, query), int64(len(out)), nil
}

type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.PaymentID == invoice.PaymentID {
			return repository.ErrDuplicate
		}
	}
	invoice.ID = r.s.id()
	stored := *invoice
	stored.Retention = nil
	r.s.invoices[invoice.ID] = stored
	return nil
}

func (r *invoiceRepo) FindByPayment(ctx context.Context, paymentID uint) (*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.PaymentID == paymentID {
			for _, ret := range r.s.retentions {
				if ret.InvoiceID != nil && *ret.InvoiceID == inv.ID {
					ret := ret
					inv.Retention = &ret
				}
			}
			return &inv, nil
		}
	}
	return nil, repository.ErrNotFound
}

type retentionRepo struct{ s *Store }

func (r *retentionRepo) Create(ctx context.Context, retention *models.Retention) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	retention.ID = r.s.id()
	r.s.retentions[retention.ID] = *retention
	return nil
}

func (r *retentionRepo) AssignInvoice(ctx context.Context, retentionID, invoiceID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ret, ok := r.s.retentions[retentionID]
	if !ok {
		return repository.ErrNotFound
	}
	ret.InvoiceID = &invoiceID
	r.s.retentions[retentionID] = ret
	return nil
}

type settingRepo struct{ s *Store }

func (r *settingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	setting, ok := r.s.settings[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &setting, nil
}

func (r *settingRepo) Set(ctx context.Context, key, value string) error {
	r.s.SetSetting(key, value)
	return nil
}

func (r *settingRepo) List(ctx context.Context) ([]models.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Setting, 0, len(r.s.settings))
	for _, setting := range r.s.settings {
		out = append(out, setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.id()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r *auditRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.AuditLog
	for _, entry := range r.s.audits {
		if entity := query.Filters["entity"]; entity != "" && entry.Entity != entity {
			continue
		}
		if action := query.Filters["action"]; action != "" && entry.Action != action {
			continue
		}
		out = append(out, entry)
	}
	return paginate(out, query), int64(len(out)), nil
}

var (
	_ repository.LeaseRepository      = (*leaseRepo)(nil)
	_ repository.LandlordRepository   = (*landlordRepo)(nil)
	_ repository.PaymentRepository    = (*paymentRepo)(nil)
	_ repository.PriceQuoteRepository = (*quoteRepo)(nil)
	_ repository.InvoiceRepository    = (*invoiceRepo)(nil)
	_ repository.RetentionRepository  = (*retentionRepo)(nil)
	_ repository.SettingRepository    = (*settingRepo)(nil)
	_ repository.AuditRepository      = (*auditRepo)(nil)
	_ repository.TxManager            = (*txManager)(nil)
)

func (r *paymentRepo) SummarizeByTenant(ctx context.Context, from, to time.Time, statuses []string) ([]repository.TenantDueSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byTenant := make(map[uint]*repository.TenantDueSummary)
	for _, p := range r.s.payments {
		if p.DueDate.Before(from) || !p.DueDate.Before(to) || !contains(statuses, p.Status) {
			continue
		}
		tenantID := r.s.leases[p.LeaseID].TenantID
		row, ok := byTenant[tenantID]
		if !ok {
			row = &repository.TenantDueSummary{TenantID: tenantID}
			byTenant[tenantID] = row
		}
		row.Payments++
		row.Quintals = row.Quintals.Add(p.Quintals.Decimal)
		row.Amount = row.Amount.Add(p.Amount.Decimal)
	}
	out := make([]repository.TenantDueSummary, 0, len(byTenant))
	for _, row := range byTenant {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
