// Command toolshedctl is the operator CLI for a Toolshed deployment.
package main

import (
	"fmt"
	"os"

	"toolshed/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.RootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
