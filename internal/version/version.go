// Package version exposes the build-time identity printed by the CLI
// and logged at startup.
package version

const (
	// AppName is the CLI's display name.
	AppName = "metacore"
	// BuildVersion is the CLI binary's own version, independent of the
	// analysis algorithm version (analysis.AlgorithmVersion) stamped
	// into persisted records.
	BuildVersion = "0.1.0"
)
