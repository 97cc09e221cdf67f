package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/krypton/internal/sale"
)

const dateLayout = "Jan 2, 2006 15:04 MST"

// ProgressBar renders percent (0–100, may exceed 100) as a bar of the given
// width followed by the percentage. The bar itself is capped at full.
func ProgressBar(percent decimal.Decimal, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := percent.Mul(decimal.NewFromInt(int64(width))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
	if filled < 0 {
		filled = 0
	}
	if filled > int64(width) {
		filled = int64(width)
	}
	bar := StyleSuccess.Render(strings.Repeat("█", int(filled))) +
		StyleDim.Render(strings.Repeat("░", width-int(filled)))
	return bar + " " + StyleValue.Render(percent.StringFixed(2)+"%")
}

// PhaseBadge renders the sale phase as a colored label. PhaseUnknown
// renders as "Unknown State".
func PhaseBadge(p sale.Phase) string {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#000000"))
	switch p {
	case sale.PhaseRunning:
		return base.Background(ColorSuccess).Render(p.String())
	case sale.PhaseBeforeStart:
		return base.Background(ColorInfo).Render(p.String())
	case sale.PhaseAfterEnd:
		return base.Background(ColorMeta).Foreground(ColorValue).Render(p.String())
	case sale.PhaseHalted, sale.PhaseError:
		return base.Background(ColorError).Render(p.String())
	}
	return base.Background(ColorWarning).Render(p.String())
}

// SessionBadge renders the wallet session state and account.
func SessionBadge(s sale.Session) string {
	switch s.State {
	case sale.Connected:
		return StyleSuccess.Render("● connected ") + Addr(s.Account)
	case sale.Connecting:
		return StyleWarning.Render("◌ connecting…")
	}
	return StyleDim.Render("○ not connected")
}

// SnapshotBlock renders the sale parameters. An unloaded snapshot renders
// zeros, the way the sale page does before its first read.
func SnapshotBlock(s sale.Snapshot, symbol string) string {
	if symbol == "" {
		symbol = "tokens"
	}
	pairs := [][2]string{
		{"State", PhaseBadge(s.Phase)},
		{"Total supply", s.TotalSupply.String() + " " + symbol},
		{"Token price", s.TokenPrice.String() + " ETH"},
		{"Raised", s.TotalRaised.String() + " / " + s.HardCap.String() + " ETH"},
		{"Progress", ProgressBar(s.Progress(), 30)},
		{"Min investment", s.MinInvestment.String() + " ETH"},
		{"Max investment", s.MaxInvestment.String() + " ETH"},
	}
	if s.Loaded() {
		pairs = append(pairs, [2]string{"Updated", Meta(s.UpdatedAt.Local().Format("15:04:05"))})
	}
	out := KeyValueBlock("Sale", pairs)
	if s.PolicyDivergence() {
		out += "\n" + Warn(fmt.Sprintf(
			"Contract limits are %s–%s ETH; this client accepts %s–%s ETH.",
			s.MinInvestment, s.MaxInvestment, sale.PolicyMin, sale.PolicyMax))
	}
	return out
}

// DetailsBlock renders token and sale window details relative to now.
func DetailsBlock(d sale.Details, now time.Time) string {
	source := Meta("contract")
	if !d.Live {
		source = Meta("configured")
	}
	var window string
	switch d.Window(now) {
	case -1:
		window = StyleInfo.Render("opens in " + humanDuration(d.SaleStart.Sub(now)))
	case 0:
		window = StyleSuccess.Render("open")
		if !d.SaleEnd.IsZero() {
			window += Meta(", closes in " + humanDuration(d.SaleEnd.Sub(now)))
		}
	default:
		window = StyleDim.Render("closed")
	}
	return KeyValueBlock("Token", [][2]string{
		{"Name", Token(d.TokenName) + " (" + d.TokenSymbol + ")"},
		{"Sale opens", formatDate(d.SaleStart)},
		{"Sale closes", formatDate(d.SaleEnd)},
		{"Window", window},
		{"Source", source},
	})
}

// InvestmentBlock renders a mined investment.
func InvestmentBlock(inv *sale.Investment) string {
	return KeyValueBlock("Investment confirmed", [][2]string{
		{"Account", Addr(inv.Account)},
		{"Amount", inv.Amount.String() + " ETH"},
		{"Tx hash", Addr(inv.TxHash)},
		{"Block", fmt.Sprintf("#%d", inv.BlockNumber)},
		{"Gas used", fmt.Sprintf("%d", inv.GasUsed)},
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.UTC().Format(dateLayout)
}

// humanDuration renders d as "3d 4h", "5h 12m" or "42m".
func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	days := int(d / (24 * time.Hour))
	hours := int(d%(24*time.Hour)) / int(time.Hour)
	mins := int(d%time.Hour) / int(time.Minute)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
