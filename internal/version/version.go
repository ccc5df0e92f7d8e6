// Package version exposes build version information.
package version

// Version is the release version, overridden at build time via
// -ldflags "-X github.com/deeklead/wfmend/internal/version.Version=...".
var Version = "0.1.0-dev"
