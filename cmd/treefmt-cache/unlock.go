package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnlockCmd(opts *rootOptions) *cobra.Command {
	var (
		version string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Remove an abandoned install lock",
		Long: `Remove the install lock left behind by a crashed process.

Without --force only a lock older than stale_lock_after is removed. Forcing
removal while another process is installing can cause a second download.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			v, err := resolveVersion(version, a)
			if err != nil {
				return err
			}

			removed, err := a.Manager.Unlock(v, force)
			if err != nil {
				return err
			}

			if removed {
				fmt.Fprintln(cmd.OutOrStdout(), "lock removed")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no lock present")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "treefmt version (default from settings)")
	cmd.Flags().BoolVar(&force, "force", false, "remove the lock even if it is not stale")
	return cmd
}
