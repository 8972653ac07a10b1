// Package version reports the build identity of the running binary
package version

// set at release time via
// -ldflags "-X github.com/SamMeown/ETL/internal/core/version.version=v1.2.0 ..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// BuildInfo is the payload of GET /ops/version
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the stamped build identity
func Info() BuildInfo {
	return BuildInfo{
		Service: "moviesync",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}
