package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/krypton/internal/chain"
	"github.com/Mohsinsiddi/krypton/internal/contract"
	"github.com/Mohsinsiddi/krypton/internal/sale"
)

// Account signs and submits transactions for one signing wallet. It
// implements sale.Signer.
type Account struct {
	wallet  *Wallet
	key     *ecdsa.PrivateKey
	backend Backend
	cfg     ProviderConfig
	log     zerolog.Logger
}

// Address returns the wallet's address.
func (a *Account) Address() string { return a.wallet.Address }

// Wallet returns the wallet metadata.
func (a *Account) Wallet() *Wallet { return a.wallet }

// Bind returns a handle to the sale contract whose calls are made from this
// account.
func (a *Account) Bind(address string) sale.Contract {
	return contract.NewSale(a.backend, address, a.wallet.Address)
}

// SendTransaction sends value wei to the address to as an EIP-1559
// transaction. The user sees a TxPreview before anything is signed.
func (a *Account) SendTransaction(ctx context.Context, to string, value *big.Int) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, to)
	}
	from := a.Address()
	toAddr := common.HexToAddress(to)

	gasPrice, err := a.backend.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	estimated := true
	gas, err := a.backend.EstimateGas(ctx, from, to, nil, value)
	if err != nil {
		a.log.Debug().Err(err).Uint64("fallback", fallbackGas).Msg("gas estimation failed")
		gas, estimated = fallbackGas, false
	}

	nonce, err := a.backend.GetPendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	chainID := big.NewInt(a.cfg.ChainID)
	maxFee := new(big.Int).Mul(gasPrice, big.NewInt(2))
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: maxFee,
		Gas:       gas,
		To:        &toAddr,
		Value:     value,
	})

	preview := TxPreview{
		From:     from,
		To:       toAddr.Hex(),
		Value:    value,
		Gas:      gas,
		MaxFee:   maxFee,
		ChainID:  a.cfg.ChainID,
		Nonce:    nonce,
		Estimate: estimated,
	}
	if !a.cfg.Authorizer.ApproveTx(preview) {
		return "", sale.ErrUserRejected
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), a.key)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshaling signed tx: %w", err)
	}

	hash, err := a.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	a.log.Debug().Str("tx", hash).Uint64("nonce", nonce).Uint64("gas", gas).Msg("transaction broadcast")
	return hash, nil
}

// WaitMined polls for the receipt of hash until it is mined or the
// confirmation timeout expires. A reverted transaction is an error wrapping
// chain.ErrReverted.
func (a *Account) WaitMined(ctx context.Context, hash string) (*chain.TxReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.ConfirmTimeout)
	defer cancel()
	return a.backend.WaitForReceipt(ctx, hash, a.cfg.PollInterval)
}
