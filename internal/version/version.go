// Package version reports how the kuvia binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X github.com/kuvia/kuvia/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	// BuildTime is RFC3339.
	BuildTime = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Modified  bool      `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Info collects the build information, falling back to the VCS stamps the
// Go toolchain embeds when the ldflags were not set.
func Info() *BuildInfo {
	info := &BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		info.BuildTime = t
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime.IsZero() {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					info.BuildTime = t
				}
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	return info
}

// Short returns a one-word version such as "v1.2.0" or "dev-1a2b3c4".
func Short() string {
	info := Info()
	if info.Version != "dev" {
		return info.Version
	}
	if info.GitCommit != "unknown" && len(info.GitCommit) >= 7 {
		return "dev-" + info.GitCommit[:7]
	}
	return "dev"
}

// String formats the build information for humans, one field per line.
func (b *BuildInfo) String() string {
	parts := []string{fmt.Sprintf("Version: %s", b.Version)}
	if b.GitCommit != "unknown" {
		commit := b.GitCommit
		if b.Modified {
			commit += " (modified)"
		}
		parts = append(parts, fmt.Sprintf("Commit: %s", commit))
	}
	if !b.BuildTime.IsZero() {
		parts = append(parts, fmt.Sprintf("Built: %s", b.BuildTime.Format(time.RFC3339)))
	}
	parts = append(parts,
		fmt.Sprintf("Go: %s", b.GoVersion),
		fmt.Sprintf("Platform: %s", b.Platform))
	return strings.Join(parts, "\n")
}
