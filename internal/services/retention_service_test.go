package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWithholding(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		floor    string
		months   int
		base     string
		expected string
	}{
		{name: "Monthly over the base", amount: "80000", floor: "50000", months: 1, base: "50000.00", expected: "1800.00"},
		{name: "Monthly under the base", amount: "40000", floor: "50000", months: 1, base: "50000.00", expected: "0.00"},
		{name: "Exactly the base", amount: "50000", floor: "50000", months: 1, base: "50000.00", expected: "0.00"},
		{name: "Quarterly scales the base", amount: "200000", floor: "50000", months: 3, base: "150000.00", expected: "3000.00"},
		{name: "Rounds half up", amount: "50000.25", floor: "50000", months: 1, base: "50000.00", expected: "0.02"},
		{name: "Zero floor", amount: "1000", floor: "0", months: 12, base: "0.00", expected: "60.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ComputeWithholding(dec(tt.amount), dec(tt.floor), tt.months)
			assert.Equal(t, tt.base, w.Base.StringFixed(2))
			assert.Equal(t, tt.expected, w.Amount.StringFixed(2))
			assert.False(t, w.Amount.IsNegative())
		})
	}
}

func TestComputeForInvoice(t *testing.T) {
	env := newTestEnv(t, day(2024, 3, 10))
	env.store.SetSetting(models.SettingMinimumTaxableBase, "50000")

	payment := &models.Payment{ID: 9, Amount: nullDec("80000")}
	retention, err := env.svcs.Retention.ComputeForInvoice(context.Background(), payment, 4, 1, day(2024, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, uint(9), retention.PaymentID)
	assert.Equal(t, uint(4), retention.LandlordID)
	assert.Equal(t, "50000.00", retention.TaxableFloor.StringFixed(2))
	assert.Equal(t, "1800.00", retention.Amount.StringFixed(2))
	assert.Nil(t, retention.InvoiceID)
}

func TestComputeForInvoiceSettingErrors(t *testing.T) {
	payment := &models.Payment{ID: 9, Amount: nullDec("80000")}

	t.Run("Missing", func(t *testing.T) {
		env := newTestEnv(t, day(2024, 3, 10))
		_, err := env.svcs.Retention.ComputeForInvoice(context.Background(), payment, 4, 1, day(2024, 3, 10))
		assert.ErrorIs(t, err, ErrSettingNotFound)
	})

	t.Run("Not a number", func(t *testing.T) {
		env := newTestEnv(t, day(2024, 3, 10))
		env.store.SetSetting(models.SettingMinimumTaxableBase, "cincuenta mil")
		_, err := env.svcs.Retention.ComputeForInvoice(context.Background(), payment, 4, 1, day(2024, 3, 10))
		assert.ErrorIs(t, err, ErrInvalidSetting)
	})
}

func TestSettingService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 10))

	_, err := env.svcs.Setting.Get(ctx, models.SettingMinimumTaxableBase)
	assert.ErrorIs(t, err, ErrSettingNotFound)

	_, ok, err := env.svcs.Setting.GetConfig(ctx, models.SettingMinimumTaxableBase)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, env.svcs.Setting.Set(ctx, models.SettingMinimumTaxableBase, "-1"), ErrInvalidSetting)
	assert.ErrorIs(t, env.svcs.Setting.Set(ctx, models.SettingMinimumTaxableBase, "abc"), ErrInvalidSetting)
	assert.ErrorIs(t, env.svcs.Setting.Set(ctx, " ", "1"), ErrInvalidInput)

	require.NoError(t, env.svcs.Setting.Set(ctx, models.SettingMinimumTaxableBase, " 67000.50 "))
	value, ok, err := env.svcs.Setting.GetConfig(ctx, models.SettingMinimumTaxableBase)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "67000.50", value)

	require.NoError(t, env.svcs.Setting.Set(ctx, "INVOICE_POINT_OF_SALE", "0003"))
	settings, err := env.svcs.Setting.List(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 2)
}

func TestPriceServiceRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(2024, 3, 10))

	quote, err := env.svcs.Price.Record(ctx, day(2024, 3, 8).Add(15*time.Hour), models.PriceSourceAGD, dec("251000.456"))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 8), quote.Date)
	assert.Equal(t, "251000.46", quote.PricePerTon.StringFixed(2))

	_, err = env.svcs.Price.Record(ctx, day(2024, 3, 8), models.PriceSourceAGD, dec("1"))
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = env.svcs.Price.Record(ctx, day(2024, 3, 8), models.PriceSourceBCR, dec("1"))
	assert.NoError(t, err)

	_, err = env.svcs.Price.Record(ctx, day(2024, 3, 8), "MATBA", dec("1"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.svcs.Price.Record(ctx, day(2024, 3, 9), models.PriceSourceBCR, dec("0"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
