// Package version reports the build version of csel.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via ldflags by GoReleaser
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	// If version wasn't set via ldflags, try to get it from Go module info.
	// This works when installed via "go install github.com/pthm/csel/cmd/csel@version".
	if Version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	Version, Commit, Date = fromBuildInfo(info, Version, Commit, Date)
}

// fromBuildInfo fills version, commit and date from module and VCS settings.
func fromBuildInfo(info *debug.BuildInfo, version, commit, date string) (string, string, string) {
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) >= 7 {
				commit = setting.Value[:7]
			} else {
				commit = setting.Value
			}
		case "vcs.time":
			date = setting.Value
		}
	}
	return version, commit, date
}

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("csel %s (commit: %s, built: %s) %s",
		Version, Commit, Date, runtime.Version())
}

// Short returns just the version string
func Short() string {
	return Version
}
