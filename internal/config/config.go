package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/krypton/internal/rpc"
)

const (
	defaultAlgorithm = "fastest"
	defaultLogLevel  = "warn"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keyringDir  = "keyring"

	envPrefix = "KRYPTON"
)

// env holds the KRYPTON_* overrides.
type env struct {
	ConfigDir       string        `envconfig:"CONFIG_DIR"`
	RPCURLs         []string      `envconfig:"RPC_URL"`
	RPCAlgorithm    string        `envconfig:"RPC_ALGORITHM"`
	ChainID         int64         `envconfig:"CHAIN_ID"`
	Contract        string        `envconfig:"CONTRACT"`
	Wallet          string        `envconfig:"WALLET"`
	ConfirmTimeout  time.Duration `envconfig:"CONFIRM_TIMEOUT"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
	KeyringPassword string        `envconfig:"KEYRING_PASSWORD"`
}

func readEnv() (env, error) {
	var e env
	if err := envconfig.Process(envPrefix, &e); err != nil {
		return e, fmt.Errorf("reading environment: %w", err)
	}
	return e, nil
}

// Load reads config from dir and applies KRYPTON_* environment overrides.
// dir defaults to $KRYPTON_CONFIG_DIR, then ~/.krypton.
func Load(dir string) (*Config, error) {
	e, err := readEnv()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = e.ConfigDir
	}
	cfg, err := LoadFile(dir)
	if err != nil {
		return nil, err
	}
	cfg.apply(e)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads config.json from dir (or creates defaults) without looking
// at the environment. Use it when the result is going to be saved.
func LoadFile(dir string) (*Config, error) {
	if dir == "" {
		e, err := readEnv()
		if err != nil {
			return nil, err
		}
		dir = e.ConfigDir
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".krypton")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	return cfg, nil
}

func (c *Config) apply(e env) {
	if len(e.RPCURLs) > 0 {
		c.RPCURLs = e.RPCURLs
	}
	if e.RPCAlgorithm != "" {
		c.RPCAlgorithm = e.RPCAlgorithm
	}
	if e.ChainID != 0 {
		c.ChainID = e.ChainID
	}
	if e.Contract != "" {
		c.ContractAddress = e.Contract
	}
	if e.Wallet != "" {
		c.DefaultWallet = e.Wallet
	}
	if e.ConfirmTimeout > 0 {
		c.ConfirmTimeout = Duration(e.ConfirmTimeout)
	}
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	c.KeyringPassword = e.KeyringPassword
}

// Validate checks the values a session cannot start without.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("contract_address: invalid address %q", c.ContractAddress)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("chain_id: must be positive, got %d", c.ChainID)
	}
	if _, err := rpc.ParseAlgorithm(c.RPCAlgorithm); err != nil {
		return fmt.Errorf("rpc_algorithm: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC appends an RPC URL.
func (c *Config) AddRPC(url string) error {
	if slices.Contains(c.RPCURLs, url) {
		return fmt.Errorf("RPC %s already configured", url)
	}
	c.RPCURLs = append(c.RPCURLs, url)
	return nil
}

// RemoveRPC removes an RPC URL.
func (c *Config) RemoveRPC(url string) error {
	idx := slices.Index(c.RPCURLs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found", url)
	}
	c.RPCURLs = slices.Delete(c.RPCURLs, idx, idx+1)
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the wallet store file.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// KeyringDir is where the file keychain backend keeps its files.
func (c *Config) KeyringDir() string {
	return filepath.Join(c.configDir, keyringDir)
}

// Level returns the configured log level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return lvl
}

// setters maps settable keys to their parsers.
var setters = map[string]func(c *Config, v string) error{
	"rpc_urls": func(c *Config, v string) error {
		c.RPCURLs = splitList(v)
		return nil
	},
	"rpc_algorithm": func(c *Config, v string) error {
		c.RPCAlgorithm = v
		return nil
	},
	"chain_id": func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.ChainID = n
		return nil
	},
	"contract_address": func(c *Config, v string) error {
		c.ContractAddress = v
		return nil
	},
	"default_wallet": func(c *Config, v string) error {
		c.DefaultWallet = v
		return nil
	},
	"confirm_timeout": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.ConfirmTimeout = Duration(d)
		return nil
	},
	"log_level": func(c *Config, v string) error {
		c.LogLevel = v
		return nil
	},
	"token_name": func(c *Config, v string) error {
		c.TokenName = v
		return nil
	},
	"token_symbol": func(c *Config, v string) error {
		c.TokenSymbol = v
		return nil
	},
	"sale_opens": func(c *Config, v string) error {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return err
		}
		c.SaleOpens = t
		return nil
	},
	"sale_closes": func(c *Config, v string) error {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return err
		}
		c.SaleCloses = t
		return nil
	},
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value into key and validates the result. On error the config
// is left unchanged.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	next := *c
	next.RPCURLs = slices.Clone(c.RPCURLs)
	if err := set(&next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Get renders the value of key as text.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "rpc_urls":
		return strings.Join(c.RPCURLs, ","), nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "chain_id":
		return strconv.FormatInt(c.ChainID, 10), nil
	case "contract_address":
		return c.ContractAddress, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "confirm_timeout":
		return time.Duration(c.ConfirmTimeout).String(), nil
	case "log_level":
		return c.LogLevel, nil
	case "token_name":
		return c.TokenName, nil
	case "token_symbol":
		return c.TokenSymbol, nil
	case "sale_opens":
		return c.SaleOpens.Format(time.RFC3339), nil
	case "sale_closes":
		return c.SaleCloses.Format(time.RFC3339), nil
	}
	return "", fmt.Errorf("unknown key %q", key)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		RPCURLs:         slices.Clone(DefaultRPCs),
		RPCAlgorithm:    defaultAlgorithm,
		ChainID:         DefaultChainID,
		ContractAddress: DefaultContract,
		ConfirmTimeout:  Duration(TxConfirmTimeout),
		LogLevel:        defaultLogLevel,
		TokenName:       DefaultToken,
		TokenSymbol:     DefaultSymbol,
		SaleOpens:       DefaultSaleOpens,
		SaleCloses:      DefaultSaleCloses,
		configDir:       dir,
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
