// Package version holds the build version string.
package version

// Version is the semantic version of this build. Release builds override it
// at link time with -ldflags "-X .../pkg/version.Version=...".
var Version = "0.4.0-dev"
