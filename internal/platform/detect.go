package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// HostResolver implements Resolver using host introspection.
type HostResolver struct {
	// kernelArch is a test seam for host.KernelArch.
	kernelArch func(ctx context.Context) (string, error)
	goos       string
	goarch     string
}

// NewResolver creates a Resolver for the running host.
func NewResolver() *HostResolver {
	return &HostResolver{
		kernelArch: hostKernelArch,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

// hostKernelArch reads the kernel machine string (uname -m on Unix).
// gopsutil's lookup takes no context, so cancellation is checked up front.
func hostKernelArch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return host.KernelArch()
}

// Resolve reports the host's canonical tag.
//
// The machine string is taken from the kernel when available. A cancelled
// context is a hard failure; any other kernel lookup failure falls back to
// runtime.GOARCH.
func (r *HostResolver) Resolve(ctx context.Context) (Tag, error) {
	machine := r.goarch

	if r.kernelArch != nil {
		arch, err := r.kernelArch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Tag{}, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
		} else if arch != "" {
			machine = arch
		}
	}

	tag, err := Normalize(r.goos, machine)
	if err != nil && machine != r.goarch {
		// Kernels report exotic spellings (armv7l on a 64-bit userland and
		// similar). Retry with the compiled architecture before giving up.
		if fallback, ferr := Normalize(r.goos, r.goarch); ferr == nil {
			return fallback, nil
		}
	}
	return tag, err
}
