package main

import (
	"os"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driving/cli"
)

// version is set with -ldflags "-X main.version=...".
var version string

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
