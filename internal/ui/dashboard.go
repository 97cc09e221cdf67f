package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/krypton/internal/sale"
)

// SaleClient is the part of *sale.Controller the dashboard drives.
type SaleClient interface {
	Address() string
	HasProvider() bool
	Snapshot() sale.Snapshot
	Session() sale.Session
	Refresh(ctx context.Context) (sale.Snapshot, error)
	Connect(ctx context.Context) (sale.Session, error)
	Disconnect() sale.Session
	Invest(ctx context.Context, amount string) (*sale.Investment, error)
	Details(ctx context.Context) sale.Details
	TokenBalance(ctx context.Context) (decimal.Decimal, error)
}

type dashMode int

const (
	modeBrowse dashMode = iota
	modeAmount
	modeConfirm
)

// DashboardModel is the Bubble Tea model for the interactive sale page.
// Key presses stand in for wallet dialogs: pressing c authorizes the
// connection and answering y authorizes the investment.
type DashboardModel struct {
	client       SaleClient
	ctx          context.Context
	queryTimeout time.Duration
	now          func() time.Time

	snapshot sale.Snapshot
	session  sale.Session
	details  sale.Details
	balance  *decimal.Decimal
	last     *sale.Investment

	mode   dashMode
	input  string
	amount decimal.Decimal

	busy     string // label of the operation in flight, "" when idle
	frame    int
	flash    string
	flashErr bool
	quitting bool
}

type (
	refreshedMsg struct {
		snapshot sale.Snapshot
		err      error
	}
	detailsMsg   sale.Details
	connectedMsg struct {
		session sale.Session
		err     error
	}
	investedMsg struct {
		inv *sale.Investment
		err error
	}
	balanceMsg struct {
		balance decimal.Decimal
		err     error
	}
	dashSpinMsg struct{}
)

// NewDashboard creates the dashboard model over an initialized client.
// queryTimeout bounds each read; investments wait as long as the wallet
// allows.
func NewDashboard(ctx context.Context, client SaleClient, queryTimeout time.Duration) DashboardModel {
	return DashboardModel{
		client:       client,
		ctx:          ctx,
		queryTimeout: queryTimeout,
		now:          time.Now,
		snapshot:     client.Snapshot(),
		session:      client.Session(),
	}
}

// WithError returns m showing err until the next action, e.g. a failed
// initial load.
func (m DashboardModel) WithError(err error) DashboardModel {
	if err != nil {
		m.setErr(err)
	}
	return m
}

// RunDashboard runs the dashboard until the user quits.
func RunDashboard(m DashboardModel) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

func (m DashboardModel) Init() tea.Cmd {
	return m.detailsCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeAmount:
			return m.updateAmount(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)

	case dashSpinMsg:
		if m.busy == "" {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, dashSpin()

	case refreshedMsg:
		m.busy = ""
		m.snapshot = msg.snapshot
		if msg.err != nil {
			m.setErr(msg.err)
		} else {
			m.setFlash("Sale details refreshed")
		}

	case detailsMsg:
		m.details = sale.Details(msg)

	case connectedMsg:
		m.busy = ""
		m.session = msg.session
		if msg.err != nil {
			m.setErr(msg.err)
			return m, nil
		}
		m.setFlash("Connected " + TruncateAddr(msg.session.Account))
		return m, m.balanceCmd()

	case investedMsg:
		m.busy = ""
		m.snapshot = m.client.Snapshot()
		if msg.err != nil {
			m.setErr(msg.err)
			return m, nil
		}
		m.last = msg.inv
		m.setFlash("Investment successful!")
		return m, m.balanceCmd()

	case balanceMsg:
		if msg.err == nil {
			b := msg.balance
			m.balance = &b
		}
	}
	return m, nil
}

func (m DashboardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "esc" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}
	m.flash = ""

	switch key {
	case "r":
		return m.start("Refreshing", m.refreshCmd())
	case "c":
		if m.session.IsConnected() {
			m.setFlash("Already connected")
			return m, nil
		}
		return m.start("Connecting", m.connectCmd())
	case "d":
		if !m.session.IsConnected() {
			return m, nil
		}
		m.session = m.client.Disconnect()
		m.balance = nil
		m.setFlash("Disconnected")
	case "i":
		m.mode = modeAmount
		m.input = ""
	}
	return m, nil
}

func (m DashboardModel) updateAmount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = ""
	case tea.KeyEnter:
		amt, err := sale.ValidateAmount(m.input)
		if err != nil {
			m.setErr(&sale.Error{Kind: sale.KindValidationFailure, Op: "invest", Err: err})
			return m, nil
		}
		m.amount = amt
		m.flash = ""
		m.mode = modeConfirm
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m DashboardModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.mode = modeBrowse
		return m.start("Investing "+m.amount.String()+" ETH", m.investCmd(m.amount.String()))
	case "n", "esc":
		m.mode = modeBrowse
		m.setFlash("Investment cancelled")
	}
	return m, nil
}

func (m DashboardModel) start(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = label
	m.flash = ""
	return m, tea.Batch(cmd, dashSpin())
}

func (m *DashboardModel) setFlash(s string) {
	m.flash, m.flashErr = s, false
}

func (m *DashboardModel) setErr(err error) {
	m.flash, m.flashErr = sale.UserMessage(err), true
}

// --- commands ---

func dashSpin() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return dashSpinMsg{} })
}

func (m DashboardModel) query() (context.Context, context.CancelFunc) {
	if m.queryTimeout <= 0 {
		return context.WithCancel(m.ctx)
	}
	return context.WithTimeout(m.ctx, m.queryTimeout)
}

func (m DashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.query()
		defer cancel()
		snap, err := m.client.Refresh(ctx)
		return refreshedMsg{snapshot: snap, err: err}
	}
}

func (m DashboardModel) detailsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.query()
		defer cancel()
		return detailsMsg(m.client.Details(ctx))
	}
}

func (m DashboardModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.query()
		defer cancel()
		s, err := m.client.Connect(ctx)
		return connectedMsg{session: s, err: err}
	}
}

func (m DashboardModel) investCmd(amount string) tea.Cmd {
	return func() tea.Msg {
		inv, err := m.client.Invest(m.ctx, amount)
		return investedMsg{inv: inv, err: err}
	}
}

func (m DashboardModel) balanceCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.query()
		defer cancel()
		b, err := m.client.TokenBalance(ctx)
		return balanceMsg{balance: b, err: err}
	}
}

// --- view ---

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	name := m.details.TokenName
	if name == "" {
		name = "Token"
	}
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("⚡ %s ICO  ·  %s", name, TruncateAddr(m.client.Address()))) + "\n")

	if !m.client.HasProvider() {
		sb.WriteString(Warn("No wallet detected: read-only values unavailable.") + "\n")
	}
	sb.WriteString(SessionBadge(m.session))
	if m.balance != nil {
		sb.WriteString(Meta("  holding ") + Val(m.balance.String()) + " " + Meta(m.details.TokenSymbol))
	}
	sb.WriteString("\n\n")

	sb.WriteString(SnapshotBlock(m.snapshot, m.details.TokenSymbol) + "\n")
	if m.details.TokenName != "" {
		sb.WriteString(DetailsBlock(m.details, m.now()) + "\n")
	}
	if m.last != nil {
		sb.WriteString(InvestmentBlock(m.last) + "\n")
	}

	sb.WriteString("\n")
	switch m.mode {
	case modeAmount:
		sb.WriteString(StyleInfo.Render(fmt.Sprintf("Amount in ETH (%s–%s):", sale.PolicyMin, sale.PolicyMax)) + "\n")
		sb.WriteString("> " + StyleValue.Render(m.input) + "█\n")
		sb.WriteString(Meta("Enter continue · Esc cancel") + "\n")
	case modeConfirm:
		sb.WriteString(StyleWarning.Render(fmt.Sprintf("Invest %s ETH from %s? [y/N]", m.amount, TruncateAddr(m.session.Account))) + "\n")
	}

	switch {
	case m.busy != "":
		sb.WriteString(StyleInfo.Render(spinnerFrames[m.frame]+" "+m.busy+"…") + "\n")
	case m.flash != "" && m.flashErr:
		sb.WriteString(Err(m.flash) + "\n")
	case m.flash != "":
		sb.WriteString(Success(m.flash) + "\n")
	}

	if m.mode == modeBrowse {
		sb.WriteString("\n" + dashControls(m.session.IsConnected()) + "\n")
	}
	return sb.String()
}

func dashControls(connected bool) string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	if connected {
		sb.WriteString(StyleWarning.Render("[ d ]") + StyleMeta.Render(" disconnect"))
	} else {
		sb.WriteString(StyleSuccess.Render("[ c ]") + StyleMeta.Render(" connect"))
	}
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ i ]") + StyleMeta.Render(" invest"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ r ] refresh"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ] quit"))
	return sb.String()
}
