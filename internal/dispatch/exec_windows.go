//go:build windows

package dispatch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
)

// handoff runs path as a child with inherited streams and waits for it.
// A non-zero exit is reported as *ExitError.
func handoff(path string, args []string) error {
	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Ctrl+C reaches every process on the console; let the child decide.
	signal.Ignore(os.Interrupt)
	defer signal.Reset(os.Interrupt)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %s: %w", path, err)
	}
	return nil
}
