package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"topicsweep/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, describeError(err))
		}
		os.Exit(services.ExitCode(err))
	}
}

// describeError spells out both sides of a violated data invariant so the
// mismatch can be traced without the run log.
func describeError(err error) string {
	var inv *services.InvariantError
	if errors.As(err, &inv) {
		return fmt.Sprintf("%v\n  expected: %d\n  actual:   %d", err, inv.Expected, inv.Actual)
	}
	return err.Error()
}
