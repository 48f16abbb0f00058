package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlatformCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Print the detected platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}

			tag, err := a.Resolver.Resolve(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tag.String())
			return nil
		},
	}
}
