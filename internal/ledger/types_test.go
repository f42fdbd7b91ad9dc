package ledger

import (
	"testing"
	"time"
)

func TestFormattedAmount(t *testing.T) {
	tests := []struct {
		name string
		p    Payment
		want string
	}{
		{"whole", Payment{Amount: 500, Currency: "eur"}, "5.00 EUR"},
		{"cents", Payment{Amount: 12345, Currency: "USD"}, "123.45 USD"},
		{"small", Payment{Amount: 7}, "0.07"},
		{"negative", Payment{Amount: -250, Currency: " gbp "}, "-2.50 GBP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.FormattedAmount(); got != tt.want {
				t.Fatalf("FormattedAmount = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTimeLayouts(t *testing.T) {
	if parseTime("").IsZero() != true {
		t.Fatalf("empty timestamp should parse to zero")
	}
	if (Payment{PaidAt: "2025-12-13T10:11:12Z"}).ParsedPaidAt().IsZero() {
		t.Fatalf("RFC3339 PaidAt should parse")
	}
	got := (Payment{CreatedAt: "2025-12-13 10:11:12"}).ParsedCreatedAt()
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("ParsedCreatedAt = %v, want 2025-12-13", got)
	}
	if !(Payment{UpdatedAt: "yesterday"}).ParsedUpdatedAt().IsZero() {
		t.Fatalf("garbage timestamp should parse to zero")
	}
}
