package calc

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountInWords spells an invoice amount in Spanish the way it is printed
// on the document. Example: 1500.50 -> "MIL QUINIENTOS PESOS CON 50/100"
func AmountInWords(amount decimal.Decimal) string {
	amount = Round2(amount)
	integerPart := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(integerPart)).Shift(MinorUnits).Abs().IntPart()

	words := "CERO"
	if integerPart != 0 {
		words = shorten(numberToWords(integerPart))
	}
	if integerPart >= 1_000_000 && integerPart%1_000_000 == 0 {
		words += " DE"
	}
	return fmt.Sprintf("%s PESOS CON %02d/100", words, cents)
}

func numberToWords(n int64) string {
	switch {
	case n < 0:
		return "MENOS " + numberToWords(-n)
	case n < 10:
		return units[n]
	case n < 30:
		return specials[n]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " Y " + units[n%10]
	case n < 1000:
		h, rest := n/100, n%100
		if rest == 0 {
			return hundreds[h]
		}
		if h == 1 {
			return "CIENTO " + numberToWords(rest)
		}
		return hundreds[h] + " " + numberToWords(rest)
	case n < 1_000_000:
		return group(n/1000, n%1000, "MIL", "MIL")
	case n < 1_000_000_000_000:
		return group(n/1_000_000, n%1_000_000, "UN MILLÓN", "MILLONES")
	}
	return "NÚMERO MUY GRANDE"
}

func group(count, rest int64, one, many string) string {
	head := one
	if count > 1 {
		head = shorten(numberToWords(count)) + " " + many
	}
	if rest == 0 {
		return head
	}
	return head + " " + numberToWords(rest)
}

// shorten applies the apocope used before a noun: VEINTIUNO MIL -> VEINTIÚN MIL
func shorten(words string) string {
	switch {
	case strings.HasSuffix(words, "VEINTIUNO"):
		return strings.TrimSuffix(words, "VEINTIUNO") + "VEINTIÚN"
	case strings.HasSuffix(words, "UNO"):
		return strings.TrimSuffix(words, "UNO") + "UN"
	}
	return words
}

var units = []string{
	"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
}

var specials = map[int64]string{
	10: "DIEZ", 11: "ONCE", 12: "DOCE", 13: "TRECE", 14: "CATORCE", 15: "QUINCE",
	16: "DIECISÉIS", 17: "DIECISIETE", 18: "DIECIOCHO", 19: "DIECINUEVE",
	20: "VEINTE", 21: "VEINTIUNO", 22: "VEINTIDÓS", 23: "VEINTITRÉS", 24: "VEINTICUATRO",
	25: "VEINTICINCO", 26: "VEINTISÉIS", 27: "VEINTISIETE", 28: "VEINTIOCHO", 29: "VEINTINUEVE",
}

var tens = []string{
	"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundreds = []string{
	"", "CIEN", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}
