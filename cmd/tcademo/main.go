// Command tcademo runs the composed counter, todo list and timer application.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tcademo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tcademo: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
