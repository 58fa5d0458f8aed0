package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/hsplan/internal/logger"
)

// Format renders err for the terminal. A nil error renders as "".
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Report writes the formatted error to w and logs it. It returns the exit
// code a command should terminate with: 0 for nil, 1 otherwise.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return 1
}

// Fatal reports err on stderr and exits with status 1. It does nothing for nil.
func Fatal(err error) {
	if code := Report(os.Stderr, err); code != 0 {
		os.Exit(code)
	}
}
