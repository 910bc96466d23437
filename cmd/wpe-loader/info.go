package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Load the backend and describe it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := opts.loader
			if err := l.Load(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend:   %s\n", l.Name())
			fmt.Fprintf(out, "interface: %t\n", l.HasInterface())
			return nil
		},
	}
}
