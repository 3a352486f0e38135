// Package version holds build information set through -ldflags.
package version

import "fmt"

var (
	// Version is the release version.
	Version = "0.1.0-dev"

	// GitCommit is the commit the binary was built from.
	GitCommit = ""
)

// String returns a printable version line.
func String() string {
	if GitCommit == "" {
		return fmt.Sprintf("postwoman v%s", Version)
	}
	return fmt.Sprintf("postwoman v%s (%s)", Version, GitCommit)
}
