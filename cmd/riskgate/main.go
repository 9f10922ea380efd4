package main

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(cli.ExitCode(err))
	}
}
