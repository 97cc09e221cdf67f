package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/config"
	"github.com/Mohsinsiddi/krypton/internal/sale"
	"github.com/Mohsinsiddi/krypton/internal/ui"
	"github.com/Mohsinsiddi/krypton/internal/wallet"
)

var dashboardMetricsAddr string

// dashboardLogFile receives log output while the dashboard owns the terminal.
const dashboardLogFile = "dashboard.log"

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive sale page",
	Long: `Open the interactive sale page: live sale state, wallet connection and
investing from the keyboard.

  c connect · d disconnect · i invest · r refresh · q quit

Pressing c approves the wallet connection and answering y approves the
investment, so no separate prompts are shown.

With --metrics-addr the sale metrics are served at http://<addr>/metrics
while the dashboard runs.

Log output goes to dashboard.log in the config directory instead of the
terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		restore := redirectLogs(cfg.Dir())
		defer restore()

		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		var opts []sale.Option
		if dashboardMetricsAddr != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			opts = append(opts, sale.WithMetrics(sale.NewMetrics(reg)))

			stop := serveMetrics(dashboardMetricsAddr, reg)
			defer stop()
		}

		ctl := newController(mgr, wallet.AutoApprove{}, opts...)

		ctx, cancel := initTimeout(cmd.Context())
		_, initErr := ctl.Initialize(ctx)
		cancel()

		m := ui.NewDashboard(cmd.Context(), ctl, config.QueryTimeout).WithError(initErr)
		return ui.RunDashboard(m)
	},
}

// redirectLogs points the command logger and the standard logger at a file
// in dir so nothing is written over the alternate screen. If the file cannot
// be opened logging is discarded. The returned function closes the file and
// puts both loggers back.
func redirectLogs(dir string) func() {
	prev := logger
	w, prefix, flags := log.Writer(), log.Prefix(), log.Flags()

	f, err := tea.LogToFile(filepath.Join(dir, dashboardLogFile), "krypton ")
	if err != nil {
		logger = zerolog.Nop()
		return func() { logger = prev }
	}
	logger = prev.Output(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339})

	return func() {
		logger = prev
		log.SetOutput(w)
		log.SetPrefix(prefix)
		log.SetFlags(flags)
		_ = f.Close()
	}
}

// serveMetrics serves reg on addr/metrics in the background and returns a
// function that shuts the server down.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
}
