// Package version reports build information for the apiwrap CLI and the
// User-Agent of API sessions.
//
// Version, commit, branch and build time are set at compile time:
//
//	go build -ldflags "-X github.com/kbukum/apiwrap/version.Version=1.0.0" ./cmd/apiwrap
package version
