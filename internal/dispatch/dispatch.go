// Package dispatch hands control from the shim to the cached treefmt binary.
//
// On Unix the shim's process image is replaced with execve(2), so the
// wrapped binary inherits the process identity, standard streams and exit
// status directly. Windows has no equivalent; there the binary is spawned
// with inherited streams and its exit code is propagated.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Installer ensures a treefmt version is present and returns its path.
type Installer interface {
	EnsureInstalled(ctx context.Context, version string) (string, error)
}

// ExitError reports a non-zero exit status of a spawned child.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Dispatcher installs treefmt on demand and runs it with the caller's
// arguments.
type Dispatcher struct {
	installer Installer
	version   string
	stderr    io.Writer
	// handoff replaces or spawns the process; replaced in tests.
	handoff func(path string, args []string) error
}

// New creates a Dispatcher for version. Diagnostics are written to stderr.
func New(installer Installer, version string, stderr io.Writer) *Dispatcher {
	return &Dispatcher{
		installer: installer,
		version:   version,
		stderr:    stderr,
		handoff:   handoff,
	}
}

// Run ensures the binary is installed and hands off to it with args (the
// arguments after the program name). On Unix a successful handoff never
// returns. The returned value is the exit code for the shim: 1 when
// installation or the handoff fails, the child's code on Windows.
func (d *Dispatcher) Run(ctx context.Context, args []string) int {
	path, err := d.installer.EnsureInstalled(ctx, d.version)
	if err != nil {
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return 1
	}

	if err := d.handoff(path, args); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
