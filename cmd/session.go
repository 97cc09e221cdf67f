package cmd

import (
	"context"

	"github.com/Mohsinsiddi/krypton/internal/config"
	"github.com/Mohsinsiddi/krypton/internal/rpc"
	"github.com/Mohsinsiddi/krypton/internal/sale"
	"github.com/Mohsinsiddi/krypton/internal/wallet"
)

// newWalletManager creates a Manager backed by the config-dir JSON store and
// the OS keychain.
func newWalletManager() (*wallet.Manager, error) {
	ks, err := wallet.OpenKeystore(wallet.KeystoreConfig{
		Dir:      cfg.KeyringDir(),
		Password: cfg.KeyringPassword,
		Backends: keyringBackends,
	})
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(ks),
	), nil
}

// selectedWallet is the --wallet flag, falling back to the configured default.
// Empty lets the manager pick its default wallet.
func selectedWallet() string {
	if walletFlag != "" {
		return walletFlag
	}
	return cfg.DefaultWallet
}

// newController wires a sale controller to the configured endpoints and the
// wallet store. auth answers connection and transaction requests.
func newController(mgr *wallet.Manager, auth wallet.Authorizer, opts ...sale.Option) *sale.Controller {
	algo, _ := rpc.ParseAlgorithm(cfg.RPCAlgorithm) // validated by config.Load
	detect := func(ctx context.Context) (sale.Provider, error) {
		ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		p, err := wallet.Detect(ctx, mgr, wallet.DetectConfig{
			RPCURLs:   cfg.RPCURLs,
			Algorithm: algo,
			ProviderConfig: wallet.ProviderConfig{
				ChainID:        cfg.ChainID,
				Wallet:         selectedWallet(),
				ConfirmTimeout: cfg.ConfirmTimeout.Std(),
				Authorizer:     auth,
				Logger:         logger,
			},
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	opts = append([]sale.Option{
		sale.WithLogger(logger),
		sale.WithDefaultDetails(sale.Details{
			TokenName:   cfg.TokenName,
			TokenSymbol: cfg.TokenSymbol,
			SaleStart:   cfg.SaleOpens,
			SaleEnd:     cfg.SaleCloses,
		}),
	}, opts...)
	return sale.NewController(cfg.ContractAddress, detect, opts...)
}

// initTimeout bounds endpoint selection plus the first snapshot read.
func initTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, config.RPCSelectTimeout+config.QueryTimeout)
}
