// Command innodb-parser is the same tool as cmd/redolog-tool, packaged
// under the original product's binary name.
package main

import (
	"os"

	"github.com/yamaru/redolog-scan/internal/cli"
)

var (
	version = "dev"
)

func main() {
	if err := cli.NewRootCmd("innodb-parser", version).Execute(); err != nil {
		os.Exit(1)
	}
}
