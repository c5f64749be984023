package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build information, set with -ldflags "-X .../pkg/version.Version=v0.3.0".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GitDirty  = ""
)

func dirty() bool {
	return GitDirty == "true"
}

// GetVersion returns "<name> <version> (<commit>[-dirty] <built>)".
func GetVersion(name string) string {
	commit := GitCommit
	if dirty() {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s %s (%s %s)", name, Version, commit, BuildTime)
}

// UserAgent is sent on every backend request so the server can tell client
// builds apart.
func UserAgent() string {
	return fmt.Sprintf("iskra/%s (%s/%s)", strings.TrimPrefix(Version, "v"), runtime.GOOS, runtime.GOARCH)
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() string {
	state := "clean"
	if dirty() {
		state = "dirty"
	}

	return fmt.Sprintf(`Version:    %s
Git commit: %s (%s)
Built:      %s
Go version: %s`,
		Version,
		GitCommit,
		state,
		BuildTime,
		runtime.Version(),
	)
}
