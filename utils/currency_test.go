package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncateDecimal(t *testing.T) {
	cases := []struct {
		value  string
		places int32
		want   string
	}{
		{"12.567", 2, "12.56"},
		{"12.561", 2, "12.56"},
		{"12.5", 2, "12.5"},
		{"150.19", 1, "150.1"},
		{"0.999", 2, "0.99"},
		{"-3.456", 2, "-3.45"},
		{"7", 2, "7"},
	}
	for _, tc := range cases {
		got := TruncateDecimal(decimal.RequireFromString(tc.value), tc.places)
		if got.String() != tc.want {
			t.Errorf("TruncateDecimal(%s, %d) = %s, want %s", tc.value, tc.places, got, tc.want)
		}
	}
}

func TestTruncateDecimalTwiceIsStable(t *testing.T) {
	v := decimal.RequireFromString("99.999")
	once := TruncateDecimal(v, 2)
	twice := TruncateDecimal(once, 2)
	if !once.Equal(twice) {
		t.Errorf("second truncation moved the value: %s -> %s", once, twice)
	}
}

func TestTruncateDecimalPtrNil(t *testing.T) {
	if got := TruncateDecimalPtr(nil, 2); !got.Equal(decimal.Zero) {
		t.Errorf("nil amount = %s, want 0", got)
	}
}

func TestConvertBetweenUnits(t *testing.T) {
	lakhs := decimal.RequireFromString("250")
	crores := ConvertToCrores(lakhs)
	if crores.String() != "2.5" {
		t.Errorf("250L = %sCr, want 2.5", crores)
	}
	back := ConvertToLakhs(crores)
	if !back.Equal(lakhs) {
		t.Errorf("round trip = %s, want %s", back, lakhs)
	}
}

func TestToLakhs(t *testing.T) {
	amount := decimal.RequireFromString("1.5")
	if got := ToLakhs(&amount, CurrencyFormatCrores); got.String() != "150" {
		t.Errorf("1.5Cr = %sL, want 150", got)
	}
	if got := ToLakhs(&amount, CurrencyFormatLakhs); !got.Equal(amount) {
		t.Errorf("1.5L = %sL, want 1.5", got)
	}
	if got := ToLakhs(nil, CurrencyFormatLakhs); !got.Equal(decimal.Zero) {
		t.Errorf("nil amount = %s, want 0", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		lakhs  string
		format CurrencyFormat
		want   string
	}{
		{"12.5", CurrencyFormatLakhs, "₹12.5L"},
		{"12.567", CurrencyFormatLakhs, "₹12.56L"},
		// At and above 100L display drops to one decimal place.
		{"150.19", CurrencyFormatLakhs, "₹150.1L"},
		{"99.999", CurrencyFormatLakhs, "₹99.99L"},
		{"125", CurrencyFormatCrores, "₹1.25Cr"},
		{"150.9", CurrencyFormatCrores, "₹1.5Cr"},
		{"0", CurrencyFormatLakhs, "₹0L"},
	}
	for _, tc := range cases {
		got := FormatCurrency(decimal.RequireFromString(tc.lakhs), tc.format)
		if got != tc.want {
			t.Errorf("FormatCurrency(%s, %s) = %s, want %s", tc.lakhs, tc.format, got, tc.want)
		}
	}
}

func TestParseSavingsString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"₹3.2L annually", "3.2"},
		{"₹3.2L", "3.2"},
		{"3.2l", "3.2"},
		{"₹1.5Cr", "150"},
		{"2CR", "200"},
		{"annually ₹4L", "4"},
		{"", "0"},
		{"no amount here", "0"},
		{"₹L", "0"},
	}
	for _, tc := range cases {
		got := ParseSavingsString(tc.in)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("ParseSavingsString(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
