// Command treefmt-cache inspects and maintains the treefmt shim's binary
// cache.
package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/config"
)

// Version is the wrapped treefmt release, set at build time via -ldflags.
// Empty means config.DefaultVersion.
var Version = ""

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func versionString() string {
	v := Version
	if v == "" {
		v = config.DefaultVersion
	}
	return fmt.Sprintf("wraps treefmt %s", v)
}
