// Package contracts holds the shared contracts between the pipeline core and
// its consumers.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current application version.
	Version = "0.1.0"

	// APIVersion is the version of the HTTP and WebSocket surface.
	APIVersion = "v1"
)

var (
	// BuildTime is set at build time via ldflags.
	BuildTime = "unknown"

	// GitCommit is set at build time via ldflags.
	GitCommit = "unknown"
)

// VersionInfo is the full build identity reported by the health endpoint.
type VersionInfo struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// GetVersionInfo returns the build identity of the running binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:    Version,
		APIVersion: APIVersion,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
