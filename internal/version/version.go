// Package version holds the build-time version stamp.
package version

// Version is overridden at build time via -ldflags.
var Version = "dev"
