// Package version holds the application version string.
package version

// Version is the application version. Overridden at build time via
// -ldflags "-X watego/pkg/version.Version=...".
var Version = "2.0.0-dev"
