package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/config"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository/repotest"
)

type testEnv struct {
	store *repotest.Store
	svcs  *Services
	clock *mutableClock
	obs   *recordingObserver
}

type mutableClock struct {
	now time.Time
}

func (c *mutableClock) Now() time.Time { return c.now }

type recordingObserver struct {
	jobs []string
}

func (o *recordingObserver) ObserveSweep(job string, processed, succeeded, failed, skipped int, elapsed time.Duration) {
	o.jobs = append(o.jobs, job)
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	store := repotest.NewStore()
	clock := &mutableClock{now: now}
	obs := &recordingObserver{}
	cfg := &config.Config{PriceLookbackMonths: 3}
	return &testEnv{
		store: store,
		svcs:  NewServices(store.Repositories(), nil, cfg, clock, obs),
		clock: clock,
		obs:   obs,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func strPtr(s string) *string {
	return &s
}

// addFixedLease stores a monthly fixed lease with one participation of the given landlord
func (e *testEnv) addFixedLease(landlordID uint, policy string) (leaseID, participationID uint) {
	lease := models.Lease{
		Type:            models.LeaseTypeFixed,
		Status:          models.LeaseStatusActive,
		StartDate:       day(2024, 1, 10),
		EndDate:         day(2024, 12, 31),
		Hectares:        dec("100"),
		PaymentTerm:     models.PaymentTermMonthly,
		PriceSource:     models.PriceSourceBCR,
		AveragingPolicy: policy,
		Participations: []models.Participation{{
			LandlordID:         landlordID,
			HectaresAssigned:   dec("100"),
			QuintalsPerHectare: dec("10"),
		}},
	}
	leaseID = e.store.AddLease(lease)
	return leaseID, lease.Participations[0].ID
}

func (e *testEnv) addQuote(date time.Time, price string) uint {
	return e.store.AddQuote(models.PriceQuote{Date: date, Source: models.PriceSourceBCR, PricePerTon: dec(price)})
}
