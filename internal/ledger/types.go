package ledger

import (
	"fmt"
	"strings"
	"time"
)

const ledgerTimestampLayout = "2006-01-02 15:04:05"

// Payment mirrors the payload returned by /api/payments/{id}.
type Payment struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"` // minor units
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Candidate Party  `json:"candidate"`
	Training  string `json:"training"`
	Hospital  string `json:"hospital"`
	Note      string `json:"note"`
	PaidAt    string `json:"paidAt"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Party identifies the person a payment belongs to.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FormattedAmount renders the amount with two decimals and the currency code.
func (p Payment) FormattedAmount() string {
	sign := ""
	amount := p.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	out := fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
	if cur := strings.ToUpper(strings.TrimSpace(p.Currency)); cur != "" {
		out += " " + cur
	}
	return out
}

// ParsedPaidAt returns the parsed PaidAt timestamp.
func (p Payment) ParsedPaidAt() time.Time {
	return parseTime(p.PaidAt)
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (p Payment) ParsedCreatedAt() time.Time {
	return parseTime(p.CreatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (p Payment) ParsedUpdatedAt() time.Time {
	return parseTime(p.UpdatedAt)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(ledgerTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
