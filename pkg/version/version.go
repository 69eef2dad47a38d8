// Package version reports the build identity of the specio binary.
package version

import (
	"fmt"
	"runtime/debug"
)

const unknown = "unknown"

// Set at build time with -ldflags "-X github.com/Sumatoshi-tech/specio/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills Commit and Date from the embedded VCS build info
// when they were not set by the linker, and Version from the module version
// for `go install` builds.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String formats the build identity for `specio version`.
func String() string {
	return fmt.Sprintf("specio %s (commit: %s, built: %s)", Version, Commit, Date)
}
