// Command flaggraph manages feature flags with dependencies.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/flaggraph/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "flaggraph: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
