package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0 // Run completed
	ExitRunFailed = 1 // An evaluation or comparison ended in error
	ExitError     = 2 // Configuration or runtime error
)

// RunFailedError indicates that the harness itself worked, but the driven
// evaluation or comparison ended with status error.
type RunFailedError struct {
	Message string
}

func (e *RunFailedError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var runFailedErr *RunFailedError
		if errors.As(err, &runFailedErr) {
			os.Exit(ExitRunFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
