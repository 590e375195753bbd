// Command qopt runs the quantum circuit optimizer.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/qopt/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
