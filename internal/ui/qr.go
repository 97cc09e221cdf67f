package ui

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	qrcode "github.com/skip2/go-qrcode"
)

// PaymentURI builds an EIP-681 URI that asks a mobile wallet to send wei to
// address on chainID. A nil or zero wei leaves the amount to the payer.
func PaymentURI(address string, chainID int64, wei *big.Int) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid address %q", address)
	}
	uri := fmt.Sprintf("ethereum:%s@%d", common.HexToAddress(address).Hex(), chainID)
	if wei != nil && wei.Sign() > 0 {
		uri += "?value=" + wei.String()
	}
	return uri, nil
}

// QR renders content as a terminal QR code.
func QR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("generating QR code: %w", err)
	}
	return qr.ToString(false), nil
}

// WriteQRPNG writes content as a 256px PNG QR code to path.
func WriteQRPNG(content, path string) error {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("generating QR code: %w", err)
	}
	png, err := qr.PNG(256)
	if err != nil {
		return fmt.Errorf("encoding QR code: %w", err)
	}
	return os.WriteFile(path, png, 0o644)
}
