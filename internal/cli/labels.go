package cli

import (
	"github.com/spf13/cobra"

	"github.com/minhvo/spsweep/internal/core/domain"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Detect and reset retention labels on document libraries",
	Long: `Sweeps every configured site for lists carrying a retention label that
matches the configured target prefix. Report-only unless --apply is given,
in which case each qualifying label is reset and reapplied.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSweep(domain.ModeLabels)
	},
}

func init() {
	labelsCmd.Flags().BoolVar(&applyChanges, "apply", false, "reset and reapply qualifying labels (default: report only)")
	labelsCmd.Flags().BoolVar(&showProgress, "progress", false, "show a site-level progress bar")
	rootCmd.AddCommand(labelsCmd)
}
