package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ledgerview/internal/fetch"
	"github.com/five82/ledgerview/internal/ledger"
	"github.com/five82/ledgerview/internal/prefs"
)

// PaymentController is the fetch controller the UI drives.
type PaymentController = fetch.Controller[string, ledger.Payment]

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *PaymentController
	PaymentID  string
	APIURL     string
	ThemeName  string
	PrefsPath  string
	Logger     *slog.Logger

	// Tick drives the retry countdown. Defaults to one second.
	Tick time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctrl      *PaymentController
	keys      keyMap
	log       *slog.Logger
	prefsPath string
	apiHost   string
	initialID string
	tick      time.Duration
	clock     func() time.Time

	// UI state
	theme     Theme
	width     int
	height    int
	ready     bool
	showHelp  bool
	prompting bool
	now       time.Time

	spinner spinner.Model
	input   textinput.Model
	detail  viewport.Model
}

// New creates the Bubble Tea model. opts.Controller must be set.
func New(opts Options) Model {
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(opts.ThemeName)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Info))

	input := textinput.New()
	input.Prompt = "payment id: "
	input.Placeholder = "e.g. p-1042"
	input.CharLimit = 64

	m := Model{
		ctrl:      opts.Controller,
		keys:      defaultKeyMap(),
		log:       logger,
		prefsPath: prefsPath,
		apiHost:   hostOf(opts.APIURL),
		initialID: strings.TrimSpace(opts.PaymentID),
		tick:      tick,
		clock:     clock,
		theme:     theme,
		now:       clock(),
		spinner:   sp,
		input:     input,
		detail:    viewport.New(0, 0),
	}
	if m.initialID == "" {
		m.prompting = true
		m.input.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.ctrl.Init(),
		m.spinner.Tick,
		tickCmd(m.tick),
	}
	if m.initialID != "" {
		cmds = append(cmds, m.ctrl.Request(m.initialID))
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refreshDetail()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd(m.tick)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	cmds := []tea.Cmd{m.ctrl.Update(msg)}
	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.now = m.clock()
	m.refreshDetail()
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	styles := m.theme.Styles()
	pane := styles.Pane.Width(max(m.width-2, 0)).Render(m.detail.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderStatusLine(),
		pane,
		m.renderFooter(),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.prompting {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Info))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, m.keys.Lookup):
		m.prompting = true
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Retry):
		if m.ctrl.Status().State == fetch.Idle {
			m.prompting = true
			return m, m.input.Focus()
		}
		cmd := m.ctrl.RetryNow()
		m.now = m.clock()
		m.refreshDetail()
		return m, cmd
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, m.quit()

	case key.Matches(msg, m.keys.Confirm):
		id := strings.TrimSpace(m.input.Value())
		if id == "" {
			return m, nil
		}
		m.closePrompt()
		return m, m.load(id)

	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.Reset()
}

// load switches to payment id, superseding any fetch in progress.
func (m *Model) load(id string) tea.Cmd {
	cmd := m.ctrl.Request(id)
	m.log.Info("payment selected", slog.String("payment", id))
	m.savePrefs(func(p *prefs.Prefs) { p.LastPayment = id })
	m.now = m.clock()
	m.refreshDetail()
	return cmd
}

func (m *Model) quit() tea.Cmd {
	m.ctrl.Dispose()
	return tea.Quit
}

func (m *Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Update(m.prefsPath, fn); err != nil {
		m.log.Warn("save prefs failed", slog.Any("error", err))
	}
}

func (m *Model) resize() {
	const chrome = 5 // header, status line, footer, pane border
	m.detail.Width = max(m.width-4, 0)
	m.detail.Height = max(m.height-chrome, 1)
	m.input.Width = max(m.width-len(m.input.Prompt)-4, 10)
}

// refreshDetail rebuilds the detail pane from the controller snapshot.
func (m *Model) refreshDetail() {
	m.detail.SetContent(m.detailContent())
}

func (m Model) detailContent() string {
	styles := m.theme.Styles()
	snap := m.ctrl.Snapshot()
	hasData := snap.Resource.ID != ""

	switch {
	case snap.State == fetch.Success:
		return m.renderPayment(snap.Resource)

	case hasData:
		return styles.FaintText.Render("Showing the last loaded data.") + "\n\n" + m.renderPayment(snap.Resource)

	case snap.State == fetch.Idle:
		return styles.MutedText.Render("No payment selected. Press / and enter a payment id.")

	case snap.State == fetch.Failed && snap.Err != nil:
		return styles.DangerText.Render(failureLabel(snap.Err)) + "\n\n" +
			styles.MutedText.Render(snap.Err.Error())

	default:
		return styles.MutedText.Render(fmt.Sprintf("Fetching payment %s...", snap.Key))
	}
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until the user quits or
// opts.Context is canceled. The controller is disposed on return.
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("ui requires a fetch controller")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	defer opts.Controller.Dispose()

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
