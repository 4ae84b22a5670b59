// Package version carries the build identity of the Crest control-plane
// stack. The variables are overridden at link time via -ldflags.
package version

// APIVersion is the control-plane API revision. Clients may use it to
// detect which methods and event names are available.
const APIVersion = 1

// Version is the semantic version of the crest-go release.
// Overridden at build time: -ldflags "-X .../pkg/version.Version=v1.2.3"
var Version = "dev"

// GitCommit is the git commit hash the binary was built from.
var GitCommit = "unknown"

// GitBranch is the git branch the binary was built from.
var GitBranch = "unknown"
