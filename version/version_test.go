package version

import (
	"strings"
	"testing"
)

func stamp(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, buildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	})
}

func TestGet(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		commit      string
		wantCommit  string
		wantRelease bool
	}{
		{"dev build", "dev", "", "", false},
		{"release", "1.4.0", "abc1234", "abc1234", true},
		{"long commit truncated", "1.4.0", "abc1234def5678", "abc1234", true},
		{"dirty version", "1.4.0-dirty", "abc1234", "abc1234", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.version, tt.commit, "2026-01-15T10:30:00Z")
			info := Get()
			if info.Version != tt.version {
				t.Errorf("Version = %q, want %q", info.Version, tt.version)
			}
			if tt.wantCommit != "" && info.GitCommit != tt.wantCommit {
				t.Errorf("GitCommit = %q, want %q", info.GitCommit, tt.wantCommit)
			}
			if info.BuildTime != "2026-01-15T10:30:00Z" {
				t.Errorf("BuildTime = %q", info.BuildTime)
			}
			if !info.IsDirty && info.IsRelease != tt.wantRelease {
				t.Errorf("IsRelease = %v, want %v", info.IsRelease, tt.wantRelease)
			}
		})
	}
}

func TestShort(t *testing.T) {
	stamp(t, "2.0.0", "deadbee", "")
	s := Short()
	if !strings.HasPrefix(s, "2.0.0-deadbee") {
		t.Errorf("Short() = %q", s)
	}
}

func TestGet_GoVersion(t *testing.T) {
	if info := Get(); info.GoVersion == "" {
		t.Error("expected go version from build info")
	}
}
