package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, version, commit, built, dirty string) {
	t.Helper()
	origVersion, origCommit, origTime, origDirty := Version, GitCommit, BuildTime, GitDirty
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, GitDirty = origVersion, origCommit, origTime, origDirty
	})
	Version, GitCommit, BuildTime, GitDirty = version, commit, built, dirty
}

func TestGetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		built   string
		dirty   string
		appName string
		want    string
	}{
		{
			name:    "clean build",
			version: "v1.0.0",
			commit:  "abc1234",
			built:   "2025-01-01T12:00:00Z",
			dirty:   "false",
			appName: "iskra",
			want:    "iskra v1.0.0 (abc1234 2025-01-01T12:00:00Z)",
		},
		{
			name:    "dirty build",
			version: "v1.0.0",
			commit:  "abc1234",
			built:   "2025-01-01T12:00:00Z",
			dirty:   "true",
			appName: "iskra",
			want:    "iskra v1.0.0 (abc1234-dirty 2025-01-01T12:00:00Z)",
		},
		{
			name:    "dev version",
			version: "dev",
			commit:  "unknown",
			built:   "unknown",
			appName: "iskra-server",
			want:    "iskra-server dev (unknown unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, tt.commit, tt.built, tt.dirty)
			assert.Equal(t, tt.want, GetVersion(tt.appName))
		})
	}
}

func TestUserAgent(t *testing.T) {
	withBuildInfo(t, "v0.4.1", "abc", "now", "")
	assert.Equal(t, "iskra/0.4.1 ("+runtime.GOOS+"/"+runtime.GOARCH+")", UserAgent())
}

func TestGetVersionInfo(t *testing.T) {
	withBuildInfo(t, "v1.2.3", "abc1234", "2025-01-15T10:00:00Z", "false")

	info := GetVersionInfo()
	for _, field := range []string{
		"Version:    v1.2.3",
		"Git commit: abc1234 (clean)",
		"Built:      2025-01-15T10:00:00Z",
		"Go version:",
	} {
		assert.Contains(t, info, field)
	}

	GitDirty = "true"
	assert.Contains(t, GetVersionInfo(), "(dirty)")
}
