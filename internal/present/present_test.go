package present

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// TestMoneyPlaceholder проверяет, что отсутствие суммы отличимо от нуля.
func TestMoneyPlaceholder(t *testing.T) {
	f := NewFormatter("kwd", 3)

	if got := f.Money(decimal.NullDecimal{}); got != Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}

	if got := f.Money(decimal.NewNullDecimal(decimal.Zero)); got != "KWD 0.000" {
		t.Fatalf("expected zero amount, got %q", got)
	}
}

// TestAmountGrouping проверяет разделители разрядов.
func TestAmountGrouping(t *testing.T) {
	f := NewFormatter("", 2)

	cases := map[string]string{
		"150":      "150.00",
		"1234.5":   "1,234.50",
		"1234567":  "1,234,567.00",
		"-98765.4": "-98,765.40",
	}

	for input, want := range cases {
		if got := f.Amount(decimal.RequireFromString(input)); got != want {
			t.Fatalf("amount %s: expected %q, got %q", input, want, got)
		}
	}
}

func TestDateAndText(t *testing.T) {
	f := NewFormatter("KWD", 3)

	if got := f.Date(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)); got != "Mar 10, 2026" {
		t.Fatalf("unexpected date: %q", got)
	}
	if got := f.Date(time.Time{}); got != Placeholder {
		t.Fatalf("expected placeholder for zero date, got %q", got)
	}
	if got := Text("  "); got != Placeholder {
		t.Fatalf("expected placeholder for blank text, got %q", got)
	}
}

// TestAmountWithoutFraction проверяет валюту без дробной части.
func TestAmountWithoutFraction(t *testing.T) {
	f := NewFormatter("jpy", 0)

	if got := f.Amount(decimal.RequireFromString("1500.4")); got != "JPY 1,500" {
		t.Fatalf("expected whole amount, got %q", got)
	}
}
