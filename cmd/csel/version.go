package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm/csel/internal/update"
	"github.com/pthm/csel/internal/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Example: `  csel version
  csel version --check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(w, version.Info())
		if !versionCheck {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		info, err := update.NewChecker().Check(ctx)
		if err != nil {
			// Offline is not a failure of the version command.
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Update check failed: %v\n", err)
			return nil
		}
		if info.UpdateAvailable {
			_, _ = fmt.Fprintf(w, "A newer release is available: %s\n", info.LatestVersion)
			if info.ReleaseURL != "" {
				_, _ = fmt.Fprintln(w, info.ReleaseURL)
			}
		} else {
			_, _ = fmt.Fprintln(w, "You are running the latest release.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}
