package cmdutil

import (
	"errors"

	"github.com/leefowlercu/cymirs/internal/fsutil"
)

// ResolvePath expands "~" and returns an absolute, cleaned path.
// Empty input returns an empty string.
func ResolvePath(path string) (string, error) {
	return fsutil.Resolve(path, "")
}

// exitCoder is implemented by errors that carry a process exit status.
type exitCoder interface {
	ExitCode() int
}

// ExitCode returns the process exit status for err: 0 for nil, the code
// carried by err when it has one, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		if code := ec.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
