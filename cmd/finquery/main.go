// Command finquery is a CLI for querying financial documents with
// retrieval-augmented answers.
package main

import (
	"os"

	"github.com/custodia-labs/finquery/internal/adapters/driving/cli"
)

// version is set at build time:
//
//	go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
