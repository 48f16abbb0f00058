package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the cache state for a version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			v, err := resolveVersion(version, a)
			if err != nil {
				return err
			}

			st, err := a.Manager.Status(v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:   %s\n", st.Version)
			fmt.Fprintf(out, "cache dir: %s\n", st.Paths.Dir)
			fmt.Fprintf(out, "binary:    %s\n", st.Paths.Binary)
			fmt.Fprintf(out, "installed: %t\n", st.Installed)
			if st.Locked {
				fmt.Fprintf(out, "lock:      held (age %s)\n", st.LockAge.Round(time.Second))
			} else {
				fmt.Fprintln(out, "lock:      none")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "treefmt version (default from settings)")
	return cmd
}
