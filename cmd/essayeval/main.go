package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Every requested model produced an assessment
	ExitModelsFailed = 1 // The run completed but one or more models failed
	ExitError        = 2 // Configuration, transport or runtime error
)

// ModelFailureError indicates that the benchmark run completed,
// but one or more models produced no assessment.
type ModelFailureError struct {
	Failed int
	Total  int
}

func (e *ModelFailureError) Error() string {
	return fmt.Sprintf("benchmark completed with %d of %d model(s) failed", e.Failed, e.Total)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var modelFailureErr *ModelFailureError
		if errors.As(err, &modelFailureErr) {
			os.Exit(ExitModelsFailed)
		}

		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
