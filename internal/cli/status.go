package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minhvo/spsweep/internal/control"
	"github.com/minhvo/spsweep/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent runs and queued failed sites",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	log := slog.Default()

	app, err := control.NewApp(cfg, log)
	if err != nil {
		log.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx := context.Background()

	runs, err := app.RunRepo().RecentRuns(ctx, 10)
	if err != nil {
		log.Error("Failed to query runs", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "RUN\tMODE\tAPPLY\tSITES\tLISTS\tQUALIFYING\tACTED\tFAILURES\tSTARTED")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%d/%d\t%d\t%d\t%d\t%d\t%s\n",
			shortID(r.ID), r.Mode, !r.ReportOnly,
			r.SitesProcessed, r.SitesTotal,
			r.ListsProcessed, r.Qualifying, r.ActedOn, r.Failures,
			r.StartedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()

	if app.FailedSites() == nil {
		return
	}
	for _, mode := range []domain.SweepMode{domain.ModeLabels, domain.ModeUnlock} {
		sites, err := app.FailedSites().Sites(ctx, string(mode))
		if err != nil {
			log.Warn("Failed to read failed-site queue", "mode", mode, "error", err)
			continue
		}
		if len(sites) == 0 {
			continue
		}
		fmt.Printf("\nFailed sites (%s):\n", mode)
		for _, s := range sites {
			fmt.Printf("  %s\n", s)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
