package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDailyOverdueSweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 12).Add(2*time.Hour))
	leaseID, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)

	late := env.addInstallment(leaseID, partID, "2024-03-10")
	yesterday := env.addInstallment(leaseID, partID, "2024-03-11")
	todays := env.addInstallment(leaseID, partID, "2024-03-12")
	paid := env.store.AddPayment(models.Payment{LeaseID: leaseID, ParticipationID: partID, DueDate: day(2024, 2, 10), Status: models.PaymentStatusPaid})

	report, err := env.svcs.Sweep.RunDailyOverdueSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobOverdueSweep, report.Job)
	assert.Equal(t, "2024-03-12", report.AsOf)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Succeeded)

	assert.Equal(t, models.PaymentStatusOverdue, env.store.Payment(late).Status)
	assert.Equal(t, models.PaymentStatusPending, env.store.Payment(yesterday).Status)
	assert.Equal(t, models.PaymentStatusPending, env.store.Payment(todays).Status)
	assert.Equal(t, models.PaymentStatusPaid, env.store.Payment(paid).Status)

	report, err = env.svcs.Sweep.RunDailyOverdueSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Equal(t, models.PaymentStatusOverdue, env.store.Payment(late).Status)

	env.clock.now = day(2024, 3, 13)
	_, err = env.svcs.Sweep.Run(ctx, JobOverdueSweep)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, env.store.Payment(yesterday).Status)
	assert.Equal(t, models.PaymentStatusPending, env.store.Payment(todays).Status)

	assert.Equal(t, []string{JobOverdueSweep, JobOverdueSweep, JobOverdueSweep}, env.obs.jobs)
}

func TestRunMonthlyPricingSweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 1))
	leaseID, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)
	env.addQuote(day(2024, 2, 20), "250000")

	first := env.addInstallment(leaseID, partID, "2024-03-05")
	noQuotes := env.store.AddPayment(models.Payment{
		LeaseID:         leaseID,
		ParticipationID: partID,
		DueDate:         day(2024, 3, 10),
		Status:          models.PaymentStatusPending,
		Quintals:        nullDec("10"),
		PriceSource:     models.PriceSourceAGD,
		AveragingPolicy: strPtr(models.AveragingPriorMonthAll),
	})
	last := env.addInstallment(leaseID, partID, "2024-03-31")
	midMonth := env.store.AddPayment(models.Payment{
		LeaseID:         leaseID,
		ParticipationID: partID,
		DueDate:         day(2024, 3, 20),
		Status:          models.PaymentStatusPending,
		Quintals:        nullDec("10"),
		PriceSource:     models.PriceSourceBCR,
		AveragingPolicy: strPtr(models.AveragingDays10To15),
	})
	nextMonth := env.addInstallment(leaseID, partID, "2024-04-01")

	report, err := env.svcs.Sweep.RunMonthlyPricingSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, noQuotes, report.Failures[0].ID)

	assert.True(t, env.store.Payment(first).IsPriced())
	assert.True(t, env.store.Payment(last).IsPriced())
	assert.False(t, env.store.Payment(noQuotes).IsPriced())
	assert.False(t, env.store.Payment(midMonth).IsPriced())
	assert.False(t, env.store.Payment(nextMonth).IsPriced())

	report, err = env.svcs.Sweep.RunMonthlyPricingSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)
}

func TestRunMidMonthPricingSweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 15))
	leaseID, partID := env.addFixedLease(1, models.AveragingDays10To15)
	for d := 10; d <= 15; d++ {
		env.addQuote(day(2024, 3, d), "240000")
	}
	midMonth := env.store.AddPayment(models.Payment{
		LeaseID:         leaseID,
		ParticipationID: partID,
		DueDate:         day(2024, 3, 20),
		Status:          models.PaymentStatusPending,
		Quintals:        nullDec("10"),
		PriceSource:     models.PriceSourceBCR,
		AveragingPolicy: strPtr(models.AveragingDays10To15),
	})
	priorMonth := env.addInstallment(leaseID, partID, "2024-03-25")

	_, err := env.svcs.Sweep.RunMidMonthPricingSweep(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, env.store.Payment(midMonth).IsPriced())
	assert.Empty(t, env.obs.jobs)

	env.clock.now = day(2024, 3, 16)
	report, err := env.svcs.Sweep.Run(ctx, JobMidMonthPricing)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)

	payment := env.store.Payment(midMonth)
	assert.Equal(t, "24000.00", payment.UnitPrice.Decimal.StringFixed(2))
	assert.Equal(t, "240000.00", payment.Amount.Decimal.StringFixed(2))
	assert.Len(t, env.store.QuoteIDs(midMonth), 6)
	assert.False(t, env.store.Payment(priorMonth).IsPriced())
}

func TestRunLeaseExpirySweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2025, 1, 2))

	paidLease, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)
	env.store.AddPayment(models.Payment{LeaseID: paidLease, ParticipationID: partID, DueDate: day(2024, 12, 10), Status: models.PaymentStatusPaid})
	owingLease, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)
	env.store.AddPayment(models.Payment{LeaseID: owingLease, ParticipationID: partID, DueDate: day(2024, 12, 10), Status: models.PaymentStatusOverdue})

	report, err := env.svcs.Sweep.Run(ctx, JobLeaseExpiry)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, models.LeaseStatusFinalized, env.store.Lease(paidLease).Status)
	assert.Equal(t, models.LeaseStatusOverdue, env.store.Lease(owingLease).Status)

	report, err = env.svcs.Sweep.Run(ctx, JobLeaseExpiry)
	require.NoError(t, err)
	assert.Zero(t, report.Processed)

	for _, entry := range env.store.AuditLogs() {
		assert.Equal(t, models.ActorScheduler, entry.Actor)
	}
}

func TestSweepAbortsWhenWorkingSetFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 16))
	env.store.FindErr = errors.New("connection refused")

	for _, job := range JobNames {
		report, err := env.svcs.Sweep.Run(ctx, job)
		assert.Error(t, err, job)
		assert.Nil(t, report, job)
	}
	assert.Empty(t, env.obs.jobs)
}

func TestSweepUnknownJob(t *testing.T) {
	env := newTestEnv(t, day(2024, 3, 16))
	_, err := env.svcs.Sweep.Run(context.Background(), "weekly_digest")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSweepKeepsCallerActor(t *testing.T) {
	env := newTestEnv(t, day(2024, 3, 12))
	leaseID, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)
	env.addInstallment(leaseID, partID, "2024-03-01")

	ctx := WithActor(context.Background(), models.ActorCLI)
	_, err := env.svcs.Sweep.RunDailyOverdueSweep(ctx)
	require.NoError(t, err)

	logs := env.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionOverdue, logs[0].Action)

	env.clock.now = day(2025, 1, 2)
	_, err = env.svcs.Sweep.RunLeaseExpirySweep(ctx)
	require.NoError(t, err)

	logs = env.store.AuditLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActorCLI, logs[len(logs)-1].Actor)
}
