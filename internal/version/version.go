package version

import "runtime/debug"

// Set with -ldflags "-X certview/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// Info returns the build information served by /api/version and printed by
// the CLI.
func Info() map[string]string {
	info := map[string]string{"version": Version}
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	if commit != "" {
		info["commit"] = commit
	}
	if BuildDate != "" {
		info["build_date"] = BuildDate
	}
	return info
}

func vcsRevision() string {
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range build.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}
