package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ledgerview/internal/ledger"
)

const detailLabelWidth = 12

type detailField struct {
	label string
	value string
}

// paymentFields lists the rows of the detail pane. Empty values are skipped.
func paymentFields(p ledger.Payment) []detailField {
	candidate := strings.TrimSpace(p.Candidate.Name)
	if email := strings.TrimSpace(p.Candidate.Email); email != "" {
		if candidate == "" {
			candidate = email
		} else {
			candidate += " <" + email + ">"
		}
	}

	all := []detailField{
		{"ID", p.ID},
		{"Amount", p.FormattedAmount()},
		{"Status", p.Status},
		{"Method", p.Method},
		{"Reference", p.Reference},
		{"Candidate", candidate},
		{"Training", p.Training},
		{"Hospital", p.Hospital},
		{"Paid", formatTimestamp(p.ParsedPaidAt())},
		{"Created", formatTimestamp(p.ParsedCreatedAt())},
		{"Updated", formatTimestamp(p.ParsedUpdatedAt())},
		{"Note", p.Note},
	}
	out := all[:0]
	for _, f := range all {
		if strings.TrimSpace(f.value) != "" {
			out = append(out, f)
		}
	}
	return out
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// renderPayment renders the detail pane body.
func (m Model) renderPayment(p ledger.Payment) string {
	styles := m.theme.Styles()
	label := styles.MutedText.Width(detailLabelWidth)

	var b strings.Builder
	for _, f := range paymentFields(p) {
		value := styles.Text.Render(f.value)
		switch f.label {
		case "Amount":
			value = styles.AccentText.Bold(true).Render(f.value)
		case "Status":
			value = m.paymentStatusStyle(f.value).Render(f.value)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(f.label), value))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) paymentStatusStyle(status string) lipgloss.Style {
	styles := m.theme.Styles()
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "paid", "settled", "completed":
		return styles.SuccessText
	case "pending", "open":
		return styles.WarningText
	case "refunded", "cancelled", "canceled", "failed":
		return styles.DangerText
	default:
		return styles.Text
	}
}
