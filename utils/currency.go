package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency helpers for the two display units used across the portal.
// All aggregation happens in lakhs; 1 crore = 100 lakhs.
//
// Display rules (truncation, never rounding):
// - lakhs < 100  -> 2 decimal places
// - lakhs >= 100 -> 1 decimal place
// - crores       -> always 2 decimal places

type CurrencyFormat string

const (
	CurrencyFormatLakhs  CurrencyFormat = "lakhs"
	CurrencyFormatCrores CurrencyFormat = "crores"
)

var (
	lakhsPerCrore = decimal.NewFromInt(100)
	oneHundred    = decimal.NewFromInt(100)
)

// TruncateDecimal drops digits past the given number of places without
// rounding. Truncation is floor-toward-zero on the decimal value, so
// repeated application is a no-op.
func TruncateDecimal(value decimal.Decimal, places int32) decimal.Decimal {
	return value.Truncate(places)
}

// TruncateDecimalPtr treats a missing amount as zero.
func TruncateDecimalPtr(value *decimal.Decimal, places int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return value.Truncate(places)
}

func ConvertToCrores(lakhs decimal.Decimal) decimal.Decimal {
	return lakhs.Div(lakhsPerCrore)
}

func ConvertToLakhs(crores decimal.Decimal) decimal.Decimal {
	return crores.Mul(lakhsPerCrore)
}

// ToLakhs normalizes an amount recorded in either unit to lakhs.
func ToLakhs(amount *decimal.Decimal, format CurrencyFormat) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	if format == CurrencyFormatCrores {
		return ConvertToLakhs(*amount)
	}
	return *amount
}

// FormatCurrency renders an amount held in lakhs for display,
// e.g. "₹12.5L" or "₹1.25Cr".
func FormatCurrency(amountInLakhs decimal.Decimal, format CurrencyFormat) string {
	if format == CurrencyFormatCrores {
		crores := TruncateDecimal(ConvertToCrores(amountInLakhs), 2)
		return "₹" + crores.String() + "Cr"
	}
	truncated := TruncateDecimal(amountInLakhs, lakhsDisplayPlaces(amountInLakhs))
	return "₹" + truncated.String() + "L"
}

func lakhsDisplayPlaces(amountInLakhs decimal.Decimal) int32 {
	if amountInLakhs.LessThan(oneHundred) {
		return 2
	}
	return 1
}

// ParseSavingsString parses free-text savings like "₹3.2L annually" or
// "₹1.5Cr" to a decimal amount in lakhs. Unparseable input yields zero.
func ParseSavingsString(savings string) decimal.Decimal {
	savings = strings.TrimSpace(strings.ReplaceAll(savings, "₹", ""))
	if savings == "" {
		return decimal.Zero
	}

	for _, part := range strings.Fields(savings) {
		upper := strings.ToUpper(part)
		var numeric string
		var inCrores bool
		switch {
		case strings.Contains(upper, "CR"):
			numeric = strings.TrimSpace(strings.ReplaceAll(upper, "CR", ""))
			inCrores = true
		case strings.Contains(upper, "L"):
			numeric = strings.TrimSpace(strings.ReplaceAll(upper, "L", ""))
		default:
			continue
		}

		// Words like "annually" also contain an L; skip anything that
		// does not leave a number behind.
		value, err := decimal.NewFromString(numeric)
		if err != nil {
			continue
		}
		if inCrores {
			return ConvertToLakhs(value)
		}
		return value
	}

	return decimal.Zero
}
