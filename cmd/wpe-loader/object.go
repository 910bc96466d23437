package main

import (
	"fmt"

	"github.com/spf13/cobra"

	wpe "github.com/kawai-network/wpe"
)

func newObjectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "object NAME...",
		Short: "Resolve backend objects by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var missing int
			for _, name := range args {
				addr, err := opts.loader.LoadObject(name)
				if wpe.IsFatal(err) {
					return err
				}
				if err != nil || addr == 0 {
					missing++
					fmt.Fprintf(out, "%s: not found\n", name)
					continue
				}
				fmt.Fprintf(out, "%s: %#x\n", name, addr)
			}
			if missing != 0 {
				return fmt.Errorf("%d of %d objects not found", missing, len(args))
			}
			return nil
		},
	}
}
