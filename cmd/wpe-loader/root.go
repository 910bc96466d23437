package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	wpe "github.com/kawai-network/wpe"
)

type rootOptions struct {
	verbose  bool
	initName string
	loader   *wpe.Loader
}

// newRootCmd builds the command tree around loader, or the process-wide
// loader if loader is nil.
func newRootCmd(loader *wpe.Loader) *cobra.Command {
	opts := &rootOptions{loader: loader}
	cmd := &cobra.Command{
		Use:   "wpe-loader",
		Short: "Load and inspect WPE backend libraries",
		Long: `wpe-loader resolves a WPE backend library the way applications do:
the backend fixed at build time, else WPE_BACKEND_LIBRARY (development builds),
else the platform's default backend. Use --init to choose one explicitly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			wpe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			if opts.loader == nil {
				opts.loader = wpe.Default()
			}
			if opts.initName != "" {
				return opts.loader.Init(opts.initName)
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.initName, "init", "", "Backend library to load explicitly")

	cmd.AddCommand(
		newInfoCmd(opts),
		newObjectCmd(opts),
		newInstallCmd(),
		newVersionCmd(),
	)
	return cmd
}
