package ui

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Mohsinsiddi/krypton/internal/sale"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent string
		filled  int
		label   string
	}{
		{"0", 0, "0.00%"},
		{"4", 0, "4.00%"},
		{"50", 5, "50.00%"},
		{"100", 10, "100.00%"},
		{"150", 10, "150.00%"}, // oversubscribed: bar full, label unclamped
	}
	for _, tt := range tests {
		t.Run(tt.percent, func(t *testing.T) {
			bar := ProgressBar(decimal.RequireFromString(tt.percent), 10)
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, 10-tt.filled, strings.Count(bar, "░"))
			assert.Contains(t, bar, tt.label)
		})
	}
}

func TestPhaseBadgeLabels(t *testing.T) {
	for p, want := range map[sale.Phase]string{
		sale.PhaseBeforeStart: "Before Start",
		sale.PhaseRunning:     "Running",
		sale.PhaseAfterEnd:    "After End",
		sale.PhaseHalted:      "Halted",
		sale.PhaseError:       "Error",
		sale.PhaseUnknown:     "Unknown State",
	} {
		assert.Contains(t, PhaseBadge(p), want)
	}
}

func TestSessionBadge(t *testing.T) {
	assert.Contains(t, SessionBadge(sale.Session{}), "not connected")
	assert.Contains(t, SessionBadge(sale.Session{State: sale.Connecting}), "connecting")
	connected := SessionBadge(sale.Session{State: sale.Connected, Account: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"})
	assert.Contains(t, connected, "connected")
	assert.Contains(t, connected, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
}

func TestSnapshotBlockZeroValue(t *testing.T) {
	out := SnapshotBlock(sale.Snapshot{}, "")
	assert.Contains(t, out, "Unknown State")
	assert.Contains(t, out, "0 tokens")
	assert.Contains(t, out, "0 / 0 ETH")
	assert.NotContains(t, out, "Updated")
	assert.NotContains(t, out, "Contract limits")
}

func TestSnapshotBlockFlagsPolicyDivergence(t *testing.T) {
	s := loadedSnapshot()
	assert.NotContains(t, SnapshotBlock(s, "KRPT"), "Contract limits")

	s.MaxInvestment = decimal.NewFromInt(5)
	out := SnapshotBlock(s, "KRPT")
	assert.Contains(t, out, "1000000 KRPT")
	assert.Contains(t, out, "Contract limits are 0.001–5 ETH")
	assert.Contains(t, out, "accepts 0.001–1 ETH")
}

func TestDetailsBlockWindow(t *testing.T) {
	d := sale.Details{
		TokenName:   "KRYPTOS",
		TokenSymbol: "KRPT",
		SaleStart:   time.Date(2023, 12, 18, 8, 0, 0, 0, time.UTC),
		SaleEnd:     time.Date(2024, 1, 12, 20, 0, 0, 0, time.UTC),
	}

	before := DetailsBlock(d, time.Date(2023, 12, 17, 8, 0, 0, 0, time.UTC))
	assert.Contains(t, before, "opens in 1d 0h")
	assert.Contains(t, before, "Dec 18, 2023 08:00 UTC")
	assert.Contains(t, before, "configured")

	d.Live = true
	during := DetailsBlock(d, time.Date(2024, 1, 12, 17, 30, 0, 0, time.UTC))
	assert.Contains(t, during, "closes in 2h 30m")
	assert.Contains(t, during, "contract")

	after := DetailsBlock(d, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, after, "closed")
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "less than a minute", humanDuration(30*time.Second))
	assert.Equal(t, "42m", humanDuration(42*time.Minute))
	assert.Equal(t, "5h 12m", humanDuration(5*time.Hour+12*time.Minute))
	assert.Equal(t, "3d 4h", humanDuration(76*time.Hour+59*time.Minute))
}

func TestInvestmentBlock(t *testing.T) {
	out := InvestmentBlock(&sale.Investment{
		Account:     "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		TxHash:      "0xabc123",
		Amount:      decimal.RequireFromString("0.5"),
		Wei:         big.NewInt(500_000_000_000_000_000),
		BlockNumber: 5_000_000,
		GasUsed:     21055,
	})
	assert.Contains(t, out, "0.5 ETH")
	assert.Contains(t, out, "0xabc123")
	assert.Contains(t, out, "#5000000")
	assert.Contains(t, out, "21055")
}
