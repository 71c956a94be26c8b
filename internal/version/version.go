// Package version carries build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/smazurov/blnd/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info contains version and build metadata.
type Info struct {
	Version          string `json:"version" example:"1.2.0" doc:"Daemon version"`
	AttributeVersion uint32 `json:"attribute_version" example:"9" doc:"Version reported by the version attribute"`
	GitCommit        string `json:"git_commit" doc:"Git commit the binary was built from"`
	BuildDate        string `json:"build_date" doc:"Build timestamp"`
	GoVersion        string `json:"go_version" example:"go1.24.11"`
	Platform         string `json:"platform" example:"linux/arm64"`
}

// Get returns version and build information. attrVersion is the value the
// attribute table reports, passed in to keep this package dependency free.
func Get(attrVersion uint32) Info {
	return Info{
		Version:          Version,
		AttributeVersion: attrVersion,
		GitCommit:        GitCommit,
		BuildDate:        BuildDate,
		GoVersion:        runtime.Version(),
		Platform:         fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a one-line version banner.
func String() string {
	if GitCommit == "unknown" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, short)
}
