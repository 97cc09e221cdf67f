package sale

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/krypton/internal/chain"
)

// Fixed UI-level investment bounds in ether. They are independent of the
// contract's minInvestment/maxInvestment; see Snapshot.PolicyDivergence.
var (
	PolicyMin = decimal.RequireFromString("0.001")
	PolicyMax = decimal.NewFromInt(1)
)

// InvestmentRequest is the user's raw amount input.
type InvestmentRequest struct {
	Amount string
}

// Validate parses and bounds-checks the request.
func (r InvestmentRequest) Validate() (decimal.Decimal, error) {
	return ValidateAmount(r.Amount)
}

// ValidateAmount parses an ether amount and checks it against
// [PolicyMin, PolicyMax]. The whole string must be a plain decimal number;
// exponent notation is rejected and at most 18 fractional digits survive
// once trailing zeros are dropped.
func ValidateAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrNotANumber
	}
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	if d.Exponent() < -chain.EtherDecimals {
		return decimal.Zero, ErrTooPrecise
	}
	if d.LessThan(PolicyMin) || d.GreaterThan(PolicyMax) {
		return decimal.Zero, &BoundsError{Min: PolicyMin, Max: PolicyMax}
	}
	return d, nil
}

// BoundsError reports an amount outside the investment policy.
type BoundsError struct {
	Min, Max decimal.Decimal
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("amount must be between %s and %s ETH", e.Min, e.Max)
}

func (e *BoundsError) Is(target error) bool { return target == ErrAmountOutOfBounds }
