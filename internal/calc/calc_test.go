package calc

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{"Plain month", date(2024, 3, 15), 1, date(2024, 4, 15)},
		{"Leap year clamp", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"Non leap year clamp", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"Thirty day month", date(2024, 3, 31), 1, date(2024, 4, 30)},
		{"Year rollover", date(2024, 11, 30), 3, date(2025, 2, 28)},
		{"Anchor keeps day", date(2024, 1, 31), 2, date(2024, 3, 31)},
		{"Backwards", date(2024, 3, 31), -1, date(2024, 2, 29)},
		{"Backwards across year", date(2024, 1, 10), -2, date(2023, 11, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonths(tt.start, tt.months))
		})
	}
}

func TestMonthHelpers(t *testing.T) {
	assert.Equal(t, date(2024, 5, 1), MonthStart(date(2024, 5, 20)))
	assert.Equal(t, date(2023, 12, 1), PreviousMonth(date(2024, 1, 20)))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, date(2024, 5, 20), DateOnly(time.Date(2024, 5, 20, 23, 59, 0, 0, time.UTC)))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "83.33", Round2(decimal.RequireFromString("83.3333")).StringFixed(2))
	assert.Equal(t, "0.13", Round2(decimal.RequireFromString("0.125")).StringFixed(2))
	assert.Equal(t, "10.00", Round2(decimal.RequireFromString("9.995")).StringFixed(2))
}

func TestMean(t *testing.T) {
	t.Run("Single value is identity", func(t *testing.T) {
		avg, ok := Mean([]decimal.Decimal{decimal.RequireFromString("1234.56")})
		assert.True(t, ok)
		assert.True(t, avg.Equal(decimal.RequireFromString("1234.56")))
	})

	t.Run("Rounds half up", func(t *testing.T) {
		avg, ok := Mean([]decimal.Decimal{
			decimal.RequireFromString("100.00"),
			decimal.RequireFromString("100.01"),
		})
		assert.True(t, ok)
		assert.Equal(t, "100.01", avg.StringFixed(2))
	})

	t.Run("Empty", func(t *testing.T) {
		_, ok := Mean(nil)
		assert.False(t, ok)
	})
}

func TestNonNegative(t *testing.T) {
	assert.True(t, NonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, NonNegative(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
}

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "CERO PESOS CON 00/100"},
		{"1500.50", "MIL QUINIENTOS PESOS CON 50/100"},
		{"839.13", "OCHOCIENTOS TREINTA Y NUEVE PESOS CON 13/100"},
		{"21000", "VEINTIÚN MIL PESOS CON 00/100"},
		{"100", "CIEN PESOS CON 00/100"},
		{"115", "CIENTO QUINCE PESOS CON 00/100"},
		{"2000000", "DOS MILLONES DE PESOS CON 00/100"},
		{"1961255.00", "UN MILLÓN NOVECIENTOS SESENTA Y UN MIL DOSCIENTOS CINCUENTA Y CINCO PESOS CON 00/100"},
		{"25000.005", "VEINTICINCO MIL PESOS CON 01/100"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, AmountInWords(decimal.RequireFromString(tt.amount)))
		})
	}
}
