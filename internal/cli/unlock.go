package cli

import (
	"github.com/spf13/cobra"

	"github.com/minhvo/spsweep/internal/core/domain"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Detect and unlock items locked as records",
	Long: `Sweeps every configured site for list items whose compliance flag marks
them as locked records. Report-only unless --apply is given, in which case
each locked item is unlocked.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSweep(domain.ModeUnlock)
	},
}

func init() {
	unlockCmd.Flags().BoolVar(&applyChanges, "apply", false, "unlock qualifying items (default: report only)")
	unlockCmd.Flags().BoolVar(&showProgress, "progress", false, "show a site-level progress bar")
	rootCmd.AddCommand(unlockCmd)
}
