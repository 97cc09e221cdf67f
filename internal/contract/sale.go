package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Backend executes read-only calls. *chain.EVMClient satisfies it.
type Backend interface {
	CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error)
}

// Sale is a typed handle to the sale contract at a fixed address. A handle
// with a non-empty from address issues its calls on behalf of that account.
type Sale struct {
	backend Backend
	address string
	from    string
}

// NewSale binds the sale contract at address. from may be empty for a
// read-only handle.
func NewSale(backend Backend, address, from string) *Sale {
	return &Sale{backend: backend, address: address, from: from}
}

// Address returns the contract address.
func (s *Sale) Address() string { return s.address }

// From returns the account calls are made from ("" for read-only handles).
func (s *Sale) From() string { return s.from }

func (s *Sale) TotalSupply(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "totalSupply")
}

func (s *Sale) RaisedAmount(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "raisedAmount")
}

func (s *Sale) TokenPrice(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "tokenPrice")
}

func (s *Sale) HardCap(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "hardCap")
}

func (s *Sale) MaxInvestment(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "maxInvestment")
}

func (s *Sale) MinInvestment(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "minInvestment")
}

func (s *Sale) SaleStart(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "saleStart")
}

func (s *Sale) SaleEnd(ctx context.Context) (*big.Int, error) {
	return s.callUint(ctx, "saleEnd")
}

// GetCurrentState returns the raw State enum code.
func (s *Sale) GetCurrentState(ctx context.Context) (uint8, error) {
	out, err := s.call(ctx, "getCurrentState")
	if err != nil {
		return 0, err
	}
	code, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("getCurrentState: unexpected result type %T", out[0])
	}
	return code, nil
}

func (s *Sale) Name(ctx context.Context) (string, error) {
	return s.callString(ctx, "name")
}

func (s *Sale) Symbol(ctx context.Context) (string, error) {
	return s.callString(ctx, "symbol")
}

// BalanceOf returns the token balance of owner.
func (s *Sale) BalanceOf(ctx context.Context, owner string) (*big.Int, error) {
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("balanceOf: invalid address %q", owner)
	}
	return s.callUint(ctx, "balanceOf", common.HexToAddress(owner))
}

// --- internal ---

func (s *Sale) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := SaleABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding call: %w", method, err)
	}

	raw, err := s.backend.CallContract(ctx, s.from, s.address, data)
	if err != nil {
		return nil, fmt.Errorf("%s: contract call failed: %w", method, err)
	}

	out, err := SaleABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding result: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}

func (s *Sale) callUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	out, err := s.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return n, nil
}

func (s *Sale) callString(ctx context.Context, method string) (string, error) {
	out, err := s.call(ctx, method)
	if err != nil {
		return "", err
	}
	str, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return str, nil
}
