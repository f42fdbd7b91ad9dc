package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ledgerview/internal/fetch"
)

// renderHeader renders the top bar: logo, connectivity, API host and the
// payment being viewed.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	st := m.ctrl.Status()

	parts := []string{bg.Render("ledgerview", styles.Logo)}
	if st.Offline {
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	} else {
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}
	if m.apiHost != "" && m.width >= 80 {
		parts = append(parts, bg.Render(m.apiHost, styles.MutedText))
	}
	if id := m.ctrl.Snapshot().Key; id != "" {
		parts = append(parts,
			bg.Render("Payment:", styles.MutedText)+bg.Space()+bg.Render(id, styles.Text))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, bg.Spaces(2)))
}

// renderStatusLine renders the state badge and the status description.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	st := m.ctrl.Status()

	name := st.State.String()
	if st.State == fetch.Retrying && st.Reason == fetch.ReasonOffline && st.NextRetryAt.IsZero() {
		name = "offline"
	}
	badge := styles.StateBadge(name).Render(strings.ToUpper(name))

	text := describeStatus(st, m.now)
	var rendered string
	switch st.State {
	case fetch.Loading:
		rendered = m.spinner.View() + " " + styles.InfoText.Render(text)
	case fetch.Retrying:
		rendered = styles.WarningText.Render(text)
	case fetch.Failed:
		rendered = styles.DangerText.Render(text)
	case fetch.Success:
		rendered = styles.SuccessText.Render(text)
	default:
		rendered = styles.MutedText.Render(text)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(badge + " " + rendered)
}

// renderFooter renders either the payment prompt or the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.prompting {
		return styles.Footer.Width(m.width).Render(m.input.View())
	}

	bg := NewBgStyle(m.theme.Surface)
	keyStyle := styles.WithBackground(m.theme.Surface).AccentText
	descStyle := styles.WithBackground(m.theme.Surface).MutedText

	var parts []string
	for _, b := range m.keys.footerBindings() {
		h := b.Help()
		parts = append(parts, bg.Render(h.Key, keyStyle)+bg.Space()+bg.Render(h.Desc, descStyle))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, bg.Spaces(3)))
}

func helpRows(k keyMap) []key.Binding {
	return []key.Binding{k.Lookup, k.Confirm, k.Cancel, k.Retry, k.CycleTheme, k.Help, k.Quit}
}
