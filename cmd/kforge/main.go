// Command kforge plans capability-aware multi-architecture kernel builds.
package main

import (
	"os"

	"github.com/leapstack-labs/kforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
