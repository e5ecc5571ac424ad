// Command bcir loads, inspects, optimizes and executes bytecode IR programs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/bcir/internal/cli"
)

func main() {
	err := cli.NewRootCommand().ExecuteContext(context.Background())
	if err == nil {
		return
	}
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Reported {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
