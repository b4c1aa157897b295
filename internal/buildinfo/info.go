// Package buildinfo carries the release stamp printed by glcore --version.
package buildinfo

// Set with -ldflags "-X github.com/cleared-dev/glcore/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
