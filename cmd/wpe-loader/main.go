package main

import (
	"fmt"
	"os"

	wpe "github.com/kawai-network/wpe"
)

// exitFatal mirrors abort(3): the loader cannot run without a backend.
const exitFatal = 134

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd(nil)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return exitCode(err)
	}
	return 0
}

// exitCode reports err and returns the status to exit with. Fatal loader
// errors were already reported by the loader itself.
func exitCode(err error) int {
	if wpe.IsFatal(err) {
		return exitFatal
	}
	fmt.Fprintf(os.Stderr, "wpe-loader: %v\n", err)
	return 1
}
