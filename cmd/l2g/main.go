// Package main provides the l2g lineage diagram compiler CLI.
package main

import (
	"os"

	"github.com/suwa-sh/lineage-to-graph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
