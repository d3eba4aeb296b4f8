package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/config"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository/repotest"
	"github.com/sjperalta/arrendamientos-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, store *repotest.Store, args ...string) (string, error) {
	t.Helper()
	factory := func(ctx context.Context, clock services.Clock) (*services.Services, func(), error) {
		cfg := &config.Config{PriceLookbackMonths: 3}
		return services.NewServices(store.Repositories(), nil, cfg, clock, nil), func() {}, nil
	}

	var out bytes.Buffer
	cmd := NewRootCommand(factory, "America/Argentina/Buenos_Aires")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(store *repotest.Store) (leaseID, paymentID uint) {
	landlordID := store.AddLandlord(models.Landlord{FiscalCondition: models.FiscalConditionSimplified})
	lease := models.Lease{
		Type:            models.LeaseTypeFixed,
		Status:          models.LeaseStatusActive,
		StartDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		PaymentTerm:     models.PaymentTermMonthly,
		PriceSource:     models.PriceSourceAGD,
		AveragingPolicy: models.AveragingPriorMonthAll,
		Participations: []models.Participation{{
			LandlordID:         landlordID,
			HectaresAssigned:   decimal.NewFromInt(12),
			QuintalsPerHectare: decimal.NewFromInt(10),
		}},
	}
	leaseID = store.AddLease(lease)
	paymentID = store.AddPayment(models.Payment{
		LeaseID:         leaseID,
		ParticipationID: lease.Participations[0].ID,
		DueDate:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:          models.PaymentStatusPending,
		Quintals:        decimal.NewNullDecimal(decimal.NewFromInt(10)),
		PriceSource:     models.PriceSourceAGD,
		AveragingPolicy: &lease.AveragingPolicy,
	})
	return leaseID, paymentID
}

func TestSweepAsOf(t *testing.T) {
	store := repotest.NewStore()
	_, paymentID := seed(store)

	out, err := execute(t, store, "sweep", "overdue", "--as-of", "2024-03-01")
	require.NoError(t, err)
	var report services.SweepReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "2024-03-01", report.AsOf)
	assert.Zero(t, report.Processed)
	assert.Equal(t, models.PaymentStatusPending, store.Payment(paymentID).Status)

	out, err = execute(t, store, "sweep", "overdue", "--as-of", "2024-03-03")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, services.JobOverdueSweep, report.Job)
	assert.Equal(t, models.PaymentStatusOverdue, store.Payment(paymentID).Status)

	logs := store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActorCLI, logs[0].Actor)
}

func TestPriceAndInvoice(t *testing.T) {
	store := repotest.NewStore()
	_, paymentID := seed(store)
	store.AddQuote(models.PriceQuote{Date: time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC), Source: models.PriceSourceAGD, PricePerTon: decimal.NewFromInt(230000)})

	out, err := execute(t, store, "price", "2")
	require.Error(t, err, out)

	out, err = execute(t, store, "price", uintArg(paymentID))
	require.NoError(t, err)
	var payment models.PaymentResponse
	require.NoError(t, json.Unmarshal([]byte(out), &payment))
	assert.Equal(t, "230000", payment.Amount.Decimal.String())

	out, err = execute(t, store, "invoice", uintArg(paymentID))
	require.NoError(t, err)
	var invoice models.InvoiceResponse
	require.NoError(t, json.Unmarshal([]byte(out), &invoice))
	assert.Equal(t, models.InvoiceTypeC, invoice.Type)
}

func TestSchedule(t *testing.T) {
	store := repotest.NewStore()
	leaseID, _ := seed(store)

	_, err := execute(t, store, "schedule", uintArg(leaseID))
	assert.ErrorIs(t, err, services.ErrAlreadyScheduled)
}

func TestArgumentErrors(t *testing.T) {
	store := repotest.NewStore()

	_, err := execute(t, store, "sweep", "weekly")
	assert.Error(t, err)

	_, err = execute(t, store, "sweep", "overdue", "--as-of", "03/03/2024")
	assert.Error(t, err)

	_, err = execute(t, store, "price", "abc")
	assert.Error(t, err)

	_, err = execute(t, store, "sweep", "mid-month", "--as-of", "2024-03-15")
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func uintArg(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
