package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInstallCmd(opts *rootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download treefmt into the cache if missing",
		Long: `Ensure the treefmt binary for a version is in the cache, downloading it
if needed, and print its path. Safe to run concurrently with the shim.`,
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

			path, err := a.Manager.EnsureInstalled(cmd.Context(), v)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "treefmt version (default from settings)")
	return cmd
}
