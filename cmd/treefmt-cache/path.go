package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPathCmd(opts *rootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cached treefmt path",
		Long:  `Print the path of the cached treefmt binary. Fails if it is not installed.`,
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

			paths, err := a.Manager.Paths(v)
			if err != nil {
				return err
			}
			installed, err := a.Manager.IsInstalled(v)
			if err != nil {
				return err
			}
			if !installed {
				return fmt.Errorf("treefmt %s is not installed (expected at %s)", v, paths.Binary)
			}

			fmt.Fprintln(cmd.OutOrStdout(), paths.Binary)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "treefmt version (default from settings)")
	return cmd
}
