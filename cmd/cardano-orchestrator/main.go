package main

import (
	"fmt"
	"os"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the stable process exit code table in
// internal/orcherrors, falling back to 1 for errors that never passed
// through that package (cobra flag-parsing errors, for example).
func exitCodeFor(err error) int {
	var oe *orcherrors.Error
	for e := err; e != nil; {
		if asOe, ok := e.(*orcherrors.Error); ok {
			oe = asOe
			break
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	if oe != nil {
		return oe.ExitCode()
	}
	return 1
}
