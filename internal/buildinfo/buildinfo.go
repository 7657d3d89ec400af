// Package buildinfo carries the version stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X cadence/internal/buildinfo.Version=v0.3.0"
package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the banner and window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 12 {
			return Commit[:12]
		}
		return Commit
	}
	return "dev"
}

// String is the full identity logged at boot.
func String() string {
	return Short() + " (" + Commit + ", " + Date + ")"
}
