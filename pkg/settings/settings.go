// Package settings holds build metadata and the per-invocation settings the
// mentionx CLI passes to its commands through context.
package settings

// CliBinaryName is the canonical binary name.
const CliBinaryName = "mentionx"

// VersionInformation is set at build time via -ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo describes the running binary.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"build_time" yaml:"build_time"`
}

// Run holds the settings of one CLI invocation.
type Run struct {
	MinLogLevel  int8
	ConfigPath   string
	EntitiesPath string
	NoColor      bool
	IsQuiet      bool
}

// NewCliParams returns the defaults used before flags are parsed.
func NewCliParams() *Run {
	return &Run{}
}
