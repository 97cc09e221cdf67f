package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Snapshot is one complete read of the sale parameters. Monetary fields are
// in ether; TotalSupply is in whole tokens. A Snapshot is always replaced as
// a whole, never patched field by field.
type Snapshot struct {
	TotalSupply   decimal.Decimal
	TotalRaised   decimal.Decimal
	TokenPrice    decimal.Decimal
	HardCap       decimal.Decimal
	MaxInvestment decimal.Decimal
	MinInvestment decimal.Decimal
	Phase         Phase
	UpdatedAt     time.Time // zero until the first successful refresh
}

// Loaded reports whether the snapshot came from the contract.
func (s Snapshot) Loaded() bool { return !s.UpdatedAt.IsZero() }

// Progress returns TotalRaised as a percentage of HardCap.
func (s Snapshot) Progress() decimal.Decimal {
	return Progress(s.TotalRaised, s.HardCap)
}

// PolicyDivergence reports whether the contract's live investment limits
// differ from the fixed bounds ValidateAmount enforces. Both are kept on
// purpose; the UI flags the difference instead of reconciling it.
func (s Snapshot) PolicyDivergence() bool {
	if !s.Loaded() {
		return false
	}
	return !s.MinInvestment.Equal(PolicyMin) || !s.MaxInvestment.Equal(PolicyMax)
}

// Progress returns raised/hardCap×100. A zero or negative cap yields 0. There
// is no upper clamp: an oversubscribed sale reports more than 100.
func Progress(raised, hardCap decimal.Decimal) decimal.Decimal {
	if hardCap.Sign() <= 0 {
		return decimal.Zero
	}
	return raised.Mul(hundred).Div(hardCap)
}
