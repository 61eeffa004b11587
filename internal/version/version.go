// Package version holds build-time version metadata, overridden via
// -ldflags at release time.
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
