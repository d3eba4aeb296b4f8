package services

import (
	"context"
	"testing"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelLease(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 12))
	leaseID, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)

	paid := env.store.AddPayment(models.Payment{LeaseID: leaseID, ParticipationID: partID, DueDate: day(2024, 1, 10), Status: models.PaymentStatusPaid})
	overdue := env.store.AddPayment(models.Payment{LeaseID: leaseID, ParticipationID: partID, DueDate: day(2024, 2, 10), Status: models.PaymentStatusOverdue})
	pending := env.store.AddPayment(models.Payment{LeaseID: leaseID, ParticipationID: partID, DueDate: day(2024, 3, 10), Status: models.PaymentStatusPending})

	lease, cancelled, err := env.svcs.Lease.Cancel(ctx, leaseID)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)
	assert.Equal(t, models.LeaseStatusCancelled, lease.Status)
	assert.Equal(t, models.LeaseStatusCancelled, env.store.Lease(leaseID).Status)

	assert.Equal(t, models.PaymentStatusPaid, env.store.Payment(paid).Status)
	assert.Equal(t, models.PaymentStatusCancelled, env.store.Payment(overdue).Status)
	assert.Equal(t, models.PaymentStatusCancelled, env.store.Payment(pending).Status)

	_, _, err = env.svcs.Lease.Cancel(ctx, leaseID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, _, err = env.svcs.Lease.Cancel(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckFinalize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 12))
	leaseID, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)

	finalized, err := env.svcs.Lease.CheckFinalize(ctx, leaseID)
	require.NoError(t, err)
	assert.False(t, finalized, "a lease without installments is never finalized")

	env.store.AddPayment(models.Payment{LeaseID: leaseID, ParticipationID: partID, DueDate: day(2024, 1, 10), Status: models.PaymentStatusPaid})
	open := env.store.AddPayment(models.Payment{LeaseID: leaseID, ParticipationID: partID, DueDate: day(2024, 2, 10), Status: models.PaymentStatusOverdue})

	finalized, err = env.svcs.Lease.CheckFinalize(ctx, leaseID)
	require.NoError(t, err)
	assert.False(t, finalized)

	p := env.store.Payment(open)
	p.Status = models.PaymentStatusPaid
	require.NoError(t, env.store.Repositories().Payment.Update(ctx, &p))

	finalized, err = env.svcs.Lease.CheckFinalize(ctx, leaseID)
	require.NoError(t, err)
	assert.True(t, finalized)
	assert.Equal(t, models.LeaseStatusFinalized, env.store.Lease(leaseID).Status)

	finalized, err = env.svcs.Lease.CheckFinalize(ctx, leaseID)
	require.NoError(t, err)
	assert.False(t, finalized)
}

func TestCloseEnded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2025, 1, 5))

	paidLease, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)
	env.store.AddPayment(models.Payment{LeaseID: paidLease, ParticipationID: partID, DueDate: day(2024, 12, 10), Status: models.PaymentStatusPaid})

	owingLease, partID := env.addFixedLease(1, models.AveragingPriorMonthAll)
	env.store.AddPayment(models.Payment{LeaseID: owingLease, ParticipationID: partID, DueDate: day(2024, 12, 10), Status: models.PaymentStatusOverdue})

	status, err := env.svcs.Lease.CloseEnded(ctx, paidLease)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusFinalized, status)

	status, err = env.svcs.Lease.CloseEnded(ctx, owingLease)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusOverdue, status)
	assert.Equal(t, models.LeaseStatusOverdue, env.store.Lease(owingLease).Status)

	_, err = env.svcs.Lease.CloseEnded(ctx, owingLease)
	assert.ErrorIs(t, err, ErrInvalidState)
}
