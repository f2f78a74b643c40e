package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess        = 0 // Command succeeded
	ExitVerifyMismatch = 1 // Exact solvers disagreed or a solution broke a constraint
	ExitError          = 2 // Configuration, input or runtime error
)

// VerificationError indicates that the solvers ran, but their answers did
// not pass cross-verification.
type VerificationError struct {
	Message string
}

func (e *VerificationError) Error() string {
	return e.Message
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var verifyErr *VerificationError
	if errors.As(err, &verifyErr) {
		return ExitVerifyMismatch
	}
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
