package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestBuildInfo(t *testing.T) {
	if BuildTime == "" {
		t.Error("BuildTime should be initialized")
	}

	if GitCommit == "" {
		t.Error("GitCommit should be initialized")
	}
}

func TestShortPrefersStamp(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v9.9.9"
	if got := Short(); got != "v9.9.9" {
		t.Errorf("Short() = %q, want v9.9.9", got)
	}

	Version = "unknown"
	if Short() == "" {
		t.Error("Short() should fall back to build info")
	}
}

func TestUserAgent(t *testing.T) {
	if !strings.HasPrefix(UserAgent(), "odata4gen/") {
		t.Errorf("unexpected user agent %q", UserAgent())
	}
}
