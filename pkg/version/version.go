// Package version exposes build metadata for the batchrun binary.
//
// Version, Commit and BuildTime are stamped at release time via ldflags.
// For binaries built without them (go install, plain go build) the commit
// falls back to the VCS information embedded by the Go toolchain.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version, stamped via ldflags.
	Version = "dev"
	// Commit is the git commit hash, stamped via ldflags.
	Commit = ""
	// BuildTime is the build timestamp, stamped via ldflags.
	BuildTime = "unknown"
)

// Info is a frozen view of the binary's build metadata.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get assembles the build metadata, preferring ldflags values and falling
// back to toolchain-embedded VCS data.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    commit(),
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func commit() string {
	if Commit != "" {
		return Commit
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	revision := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}

// String returns the human-readable multi-line rendering used by
// `batchrun version`.
func (i Info) String() string {
	return fmt.Sprintf("batchrun\n  Version:    %s\n  Commit:     %s\n  Build Time: %s\n  Go Version: %s\n  Platform:   %s",
		i.Version, i.Commit, i.BuildTime, i.GoVersion, i.Platform)
}

// JSON returns the metadata as an indented JSON document.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
