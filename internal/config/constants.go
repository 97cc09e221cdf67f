package config

import "time"

// Timeout constants used across cmd.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint probing at startup
	QueryTimeout     = 20 * time.Second // one snapshot refresh
	TxConfirmTimeout = 3 * time.Minute  // standard transaction confirmation wait
)

// Defaults for the Krypton sale on Sepolia.
const (
	DefaultChainID  = 11155111
	DefaultContract = "0x3F75dA12899634Ad91E16D230B5a55C576103F10"
	DefaultToken    = "KRYPTOS"
	DefaultSymbol   = "KRPT"
)

// DefaultRPCs are public Sepolia endpoints.
var DefaultRPCs = []string{
	"https://rpc.sepolia.org",
	"https://sepolia.gateway.tenderly.co",
	"https://ethereum-sepolia-rpc.publicnode.com",
}

// Sale window advertised on the Krypton sale page.
var (
	DefaultSaleOpens  = time.Date(2023, 12, 18, 8, 0, 0, 0, time.UTC)
	DefaultSaleCloses = time.Date(2024, 1, 12, 20, 0, 0, 0, time.UTC)
)
