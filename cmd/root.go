package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/config"
	"github.com/Mohsinsiddi/krypton/internal/sale"
	"github.com/Mohsinsiddi/krypton/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/krypton/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	verbose    bool
	walletFlag string
	assumeYes  bool
	logger     = zerolog.Nop()

	// keyringBackends restricts the keychain backends; nil uses the
	// platform default with the file backend as fallback.
	keyringBackends []keyring.BackendType
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "krypton",
	Short: "Terminal client for the Krypton token sale",
	Long: `krypton connects a local wallet to the Krypton ICO contract on Sepolia.

  Read the sale state, watch it live in an interactive dashboard, and invest
  ether from a signing wallet whose key stays in your OS keychain.

Environment variables prefixed with KRYPTON_ (KRYPTON_RPC_URL, KRYPTON_CONTRACT,
KRYPTON_CHAIN_ID, KRYPTON_WALLET, KRYPTON_LOG_LEVEL, ...) override config.json
for a single invocation.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		level := cfg.Level()
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Logger()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Banner())
		return cmd.Help()
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Debug().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, ui.Err(sale.UserMessage(err)))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $KRYPTON_CONFIG_DIR or ~/.krypton)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet to connect (default: configured default wallet)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve wallet requests without prompting")

	rootCmd.AddCommand(
		statusCmd,
		investCmd,
		dashboardCmd,
		addressCmd,
		walletCmd,
		rpcCmd,
		configCmd,
	)
}
