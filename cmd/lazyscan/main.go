// Command lazyscan translates Polars predicates, runs lazy scans over local
// relations and serves relations over Arrow Flight.
package main

import (
	"os"

	"github.com/hugr-lab/lazyscan/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
