package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	wpe "github.com/kawai-network/wpe"
)

func newInstallCmd() *cobra.Command {
	var (
		repo   string
		dir    string
		base   string
		apiURL string
	)
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download the best prebuilt backend for this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			d := wpe.NewLibraryDownloader(repo, dir)
			if apiURL != "" {
				d.APIURL = apiURL
			}
			out := cmd.OutOrStdout()
			path, err := d.DownloadLatest(ctx, base, func(complete, total int64, mbps float64, done bool) {
				if done {
					fmt.Fprintf(out, "downloaded %d bytes\n", complete)
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "installed %s\nrun with %s=%s\n", path, wpe.EnvBackendLibrary, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "GitHub repository publishing backend builds (owner/name)")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to install into")
	cmd.Flags().StringVar(&base, "base", wpe.DefaultBackendBase, "Backend library base name")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "GitHub API base URL")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}
