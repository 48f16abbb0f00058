// Command treefmt is a drop-in stand-in for treefmt. On first use it
// downloads the pinned treefmt release into a shared per-user cache, then
// replaces itself with that binary. Every argument is forwarded unchanged.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/app"
	"github.com/treefmt-pre-commit/treefmt-shim/internal/config"
	"github.com/treefmt-pre-commit/treefmt-shim/internal/dispatch"
)

// Version is the wrapped treefmt release, set at build time via -ldflags.
// Empty means config.DefaultVersion.
var Version = ""

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	a, err := app.New(config.LoadOptions{Version: Version}, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return dispatch.New(a.Manager, a.Settings.Version, stderr).Run(ctx, args)
}
