//go:build !windows

package dispatch

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// handoff replaces the current process with path. It only returns on error.
func handoff(path string, args []string) error {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, path)
	argv = append(argv, args...)

	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
