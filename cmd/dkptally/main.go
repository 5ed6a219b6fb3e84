// Command dkptally scores raid attendance logs into a DKP ledger.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"dkptally/internal/config"
	"dkptally/pkg/logger"
	"dkptally/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var rootCmd = &cobra.Command{
	Use:   "dkptally",
	Short: "Score raid attendance logs into a DKP ledger",
	Long: `dkptally turns noisy raid attendance logs into scored point totals.

Lines are sanitized, validated against the boss points table, participant
names are resolved against the guild roster (interactively when needed),
and saved runs land in an append-only history where a new run supersedes
older events inside its window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addPersistentFlags()
	registerCommands()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("base-dir", "", "directory holding points.json, settings.json and the run history (default \".\")")
	rootCmd.PersistentFlags().String("log-level", "", "log verbosity: debug, info, warn or error")
	rootCmd.PersistentFlags().String("metrics-addr", "", "expose Prometheus metrics on this address, e.g. :9090")
}

func registerCommands() {
	rootCmd.AddCommand(
		calcCmd(),
		unknownsCmd(),
		weeklyCmd(),
		runsCmd(),
		genCmd(),
	)
}

// runtime bundles everything a command execution needs: process config
// with flag overrides applied, the user settings document and the
// timezone logs are interpreted in.
type runtime struct {
	cfg      *config.Config
	settings config.Settings
	loc      *time.Location
	log      logger.Logger
}

// newRuntime loads configuration and settings for one command run.
// Flags override environment configuration, which overrides defaults.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("base-dir"); v != "" {
		cfg.BaseDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("metrics-addr"); v != "" {
		cfg.MetricsAddr = v
	}

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(cfg.BaseDir)
	if err != nil {
		// Corrupt settings fall back to defaults; the run still proceeds.
		log.Warn(ctx, "settings unreadable, using defaults", logger.Error(err))
	}

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr)
	}

	return &runtime{cfg: cfg, settings: settings, loc: loc, log: log}, nil
}

// saveSettings writes the settings document back, logging instead of
// failing the command when the write does not succeed.
func (rt *runtime) saveSettings(ctx context.Context) {
	if err := config.SaveSettings(rt.cfg.BaseDir, rt.settings); err != nil {
		rt.log.Warn(ctx, "failed to save settings", logger.Error(err))
	}
}

// startMetricsServer exposes the Prometheus registry for the lifetime of
// the command. Scrapers see counters for exactly one invocation, which is
// enough for batch-style pipelines driven by cron.
func startMetricsServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Get().Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Get().Warn(ctx, "metrics server failed", logger.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
