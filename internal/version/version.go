package version

import "github.com/carlmjohnson/versioninfo"

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/odata4gen/internal/version.Version=v1.2.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Short returns the version stamped at link time, or the module/VCS version
// recorded by the Go toolchain when no stamp was given.
func Short() string {
	if Version != "" && Version != "unknown" {
		return Version
	}
	return versioninfo.Short()
}

// UserAgent is sent with every metadata request.
func UserAgent() string {
	return "odata4gen/" + Short()
}
