// Package version exposes build metadata injected via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags.
var (
	// Version is the semantic version of the binary
	Version = "dev"
	// GitCommit is the git commit the binary was built from
	GitCommit = "unknown"
	// BuildTime is the RFC3339 build timestamp
	BuildTime = "unknown"
)

// BuildInfo holds the resolved build metadata.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the resolved build information, falling back to the module's
// embedded VCS info for development builds.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" && info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		}
	}

	return info
}

// Short returns the short version string, with an abbreviated commit when
// one is known.
func Short() string {
	info := Get()
	if len(info.GitCommit) >= 7 && info.GitCommit != "unknown" {
		return fmt.Sprintf("%s (%s)", info.Version, info.GitCommit[:7])
	}

	return info.Version
}
