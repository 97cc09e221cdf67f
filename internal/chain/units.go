package chain

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the fixed scale between wei and ether.
const EtherDecimals = 18

// ErrTooPrecise is returned when an ether amount has more fractional digits
// than a wei can represent.
var ErrTooPrecise = errors.New("more than 18 decimal places")

// WeiToEther converts a wei amount to an exact ether decimal.
// A nil amount is treated as zero.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}

// EtherToWei converts an ether decimal to wei. It fails rather than round
// when d has more than 18 fractional digits.
func EtherToWei(d decimal.Decimal) (*big.Int, error) {
	shifted := d.Shift(EtherDecimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, ErrTooPrecise
	}
	return shifted.BigInt(), nil
}

// FormatEther renders wei as an ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	return WeiToEther(wei).String()
}

// FormatGwei renders wei as whole gwei.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -9).Truncate(0).String()
}
