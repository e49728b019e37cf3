// Command redolog-tool is the CLI front end for the redo log scanner.
package main

import (
	"os"

	"github.com/yamaru/redolog-scan/internal/cli"
)

// version is stamped by -ldflags at release build time.
var version = "dev"

func main() {
	if err := cli.NewRootCmd("redolog-tool", version).Execute(); err != nil {
		os.Exit(1)
	}
}
