// Package main provides the CLI for the nestframe nested-table engine.
package main

import (
	"os"

	"github.com/leapstack-labs/nestframe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
