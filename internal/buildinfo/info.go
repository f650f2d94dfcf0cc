// Package buildinfo holds version metadata stamped in at link time with
//
//	-ldflags "-X github.com/banketl/banketl/internal/buildinfo.Version=..."
package buildinfo

import "fmt"

// Stamped by the linker; the defaults identify a local build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line shown by banketl --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
