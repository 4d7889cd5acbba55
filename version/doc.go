// Package version reports the client library version used in the default
// User-Agent header.
//
// The version is taken from the module build info when the library is
// consumed as a dependency, and can be pinned at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/deepseek/version.Version=1.0.0"
package version
