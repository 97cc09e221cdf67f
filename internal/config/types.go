package config

import (
	"encoding/json"
	"time"
)

// Config holds all krypton configuration.
type Config struct {
	RPCURLs         []string  `json:"rpc_urls"`
	RPCAlgorithm    string    `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	ChainID         int64     `json:"chain_id"`
	ContractAddress string    `json:"contract_address"`
	DefaultWallet   string    `json:"default_wallet"`
	ConfirmTimeout  Duration  `json:"confirm_timeout"`
	LogLevel        string    `json:"log_level"` // zerolog level name
	TokenName       string    `json:"token_name"`
	TokenSymbol     string    `json:"token_symbol"`
	SaleOpens       time.Time `json:"sale_opens"`
	SaleCloses      time.Time `json:"sale_closes"`

	// Not persisted: only ever read from the environment.
	KeyringPassword string `json:"-"`

	// internal: config dir path used for Save()
	configDir string
}

// Duration is a time.Duration stored as a string such as "3m0s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
