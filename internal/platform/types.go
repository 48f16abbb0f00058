// Package platform resolves the host operating system and CPU architecture
// into the canonical (os, arch) pair used to select a treefmt release asset.
//
// The OS comes from runtime.GOOS. The machine string comes from the kernel
// via gopsutil, which reports the real hardware architecture (for example
// "x86_64" or "aarch64") rather than the architecture the shim was compiled
// for. When gopsutil cannot answer, runtime.GOARCH is used instead.
package platform

import (
	"context"
	"fmt"
)

// Operating system names.
const (
	OSDarwin  = "darwin"
	OSLinux   = "linux"
	OSWindows = "windows"
)

// Architecture names.
const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// Tag is a normalized (os, arch) pair.
type Tag struct {
	OS   string // "darwin", "linux", "windows"
	Arch string // "amd64", "arm64"
}

// String returns the tag as "os/arch".
func (t Tag) String() string {
	return t.OS + "/" + t.Arch
}

// IsWindows returns true if the tag targets Windows.
func (t Tag) IsWindows() bool {
	return t.OS == OSWindows
}

// Supported lists every tag a release asset exists for.
var Supported = []Tag{
	{OS: OSDarwin, Arch: ArchARM64},
	{OS: OSDarwin, Arch: ArchAMD64},
	{OS: OSLinux, Arch: ArchARM64},
	{OS: OSLinux, Arch: ArchAMD64},
	{OS: OSWindows, Arch: ArchAMD64},
}

// UnsupportedPlatformError reports a host with no release asset.
// System and Machine hold the raw, unnormalized strings.
type UnsupportedPlatformError struct {
	System  string
	Machine string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %s %s", e.System, e.Machine)
}

// Resolver is the interface for platform resolution.
type Resolver interface {
	Resolve(ctx context.Context) (Tag, error)
}

// Static is a Resolver that always returns the same tag.
type Static Tag

// Resolve returns the fixed tag.
func (s Static) Resolve(ctx context.Context) (Tag, error) {
	return Tag(s), nil
}
