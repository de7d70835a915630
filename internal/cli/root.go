package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/minhvo/spsweep/internal/control"
	"github.com/minhvo/spsweep/internal/core/config"
	"github.com/minhvo/spsweep/internal/core/domain"
)

var (
	cfgPath      string
	isDebug      bool
	applyChanges bool
	showProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "spsweep",
	Short: "SharePoint Online compliance sweeper",
	Long: `spsweep iterates a list of SharePoint Online sites and either resets
retention labels on document libraries or unlocks items locked as records.
Both sweeps are report-only unless --apply is given.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig reads the config file and initializes logging. Exits on
// config errors: nothing can run without configuration.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})))

	return cfg
}

// runSweep is the shared body of the labels and unlock commands.
func runSweep(mode domain.SweepMode) {
	cfg := loadConfig()
	log := slog.Default()

	app, err := control.NewApp(cfg, log)
	if err != nil {
		log.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received signal, finishing current operation...", "signal", sig)
		cancel()
	}()

	var progress func(done, total int)
	if showProgress {
		var bar *progressbar.ProgressBar
		progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "sites")
			}
			_ = bar.Set(done)
		}
	}

	summary, err := app.RunSweep(ctx, mode, applyChanges, progress)
	if err != nil {
		// Only pre-flight failures (unreadable site list) land here;
		// remote errors were degraded to skips.
		log.Error("Sweep could not start", "error", err)
		os.Exit(1)
	}

	log.Info("Summary",
		"sites", summary.SitesProcessed,
		"sites_total", summary.SitesTotal,
		"lists", summary.ListsProcessed,
		"qualifying", summary.Qualifying,
		"acted_on", summary.ActedOn,
		"failures", summary.Failures,
	)

	if cfg.FailOnErrors && summary.Failures > 0 {
		os.Exit(1)
	}
}
