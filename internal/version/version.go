package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build information, set via ldflags
var (
	// Version is the current version of jsreport
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// Date is the build date
	Date = "unknown"

	// BuiltBy indicates how the binary was built
	BuiltBy = "source"
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	BuiltBy   string `json:"built_by"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information. Binaries installed with go install carry
// no ldflags, so the module version is read from the embedded build info.
func Get() Info {
	info := Info{
		Version:   GetVersion(),
		Commit:    Commit,
		Date:      Date,
		BuiltBy:   BuiltBy,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
			info.BuiltBy = "go install"
		}
	}
	return info
}

// GetVersion returns the current version
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// String formats the full build information on one line
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, by: %s, %s %s)",
		i.Version, i.Commit, i.Date, i.BuiltBy, i.GoVersion, i.Platform)
}
