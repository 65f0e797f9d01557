package main

import (
	"os"

	"github.com/codalotl/checkdeck/internal/cli"
)

func main() {
	// Run prints error messages itself; main only propagates the exit code.
	code, _ := cli.Run(os.Args, nil)
	os.Exit(code)
}
