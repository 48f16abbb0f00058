package platform

import "strings"

// archAliases maps raw machine strings to canonical architecture names.
// Both kernel spellings (uname -m) and GOARCH spellings are accepted.
var archAliases = map[string]string{
	"x86_64":  ArchAMD64,
	"amd64":   ArchAMD64,
	"x64":     ArchAMD64,
	"aarch64": ArchARM64,
	"arm64":   ArchARM64,
	"armv8":   ArchARM64,
	"armv8l":  ArchARM64,
}

// osAliases maps raw system names to canonical OS names.
var osAliases = map[string]string{
	"darwin":  OSDarwin,
	"macos":   OSDarwin,
	"linux":   OSLinux,
	"windows": OSWindows,
}

// Normalize maps a raw (system, machine) pair onto a supported Tag.
// Matching is case-insensitive and ignores surrounding whitespace.
// It returns *UnsupportedPlatformError when the pair has no release asset.
func Normalize(system, machine string) (Tag, error) {
	unsupported := &UnsupportedPlatformError{System: system, Machine: machine}

	osName, ok := osAliases[normalizeToken(system)]
	if !ok {
		return Tag{}, unsupported
	}
	arch, ok := archAliases[normalizeToken(machine)]
	if !ok {
		return Tag{}, unsupported
	}

	tag := Tag{OS: osName, Arch: arch}
	if !isSupported(tag) {
		return Tag{}, unsupported
	}
	return tag, nil
}

func isSupported(tag Tag) bool {
	for _, s := range Supported {
		if s == tag {
			return true
		}
	}
	return false
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
