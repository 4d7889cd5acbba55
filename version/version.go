package version

import (
	"runtime/debug"
	"strings"

	"golang.org/x/mod/module"
)

// ModulePath is the import path of this library.
const ModulePath = "github.com/kbukum/deepseek"

// userAgentProduct prefixes the version in the User-Agent header.
const userAgentProduct = "deepseek-go"

var (
	// Version is set at build time using -ldflags. "dev" means unset.
	Version = "dev"

	readBuildInfo = debug.ReadBuildInfo
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
}

// GetVersionInfo returns the library version. An ldflags value wins; otherwise
// the version of this module recorded in the binary's build info is used.
func GetVersionInfo() *Info {
	info := &Info{Version: Version}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Version == "dev" {
			if v := moduleVersion(bi); v != "" {
				info.Version = v
			}
		}
	}

	info.IsRelease = info.Version != "dev" &&
		!strings.Contains(info.Version, "dirty") &&
		!module.IsPseudoVersion(info.Version)
	return info
}

func moduleVersion(bi *debug.BuildInfo) string {
	if bi.Main.Path == ModulePath && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	for _, dep := range bi.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}

// UserAgent returns the default User-Agent header value, e.g. "deepseek-go/v1.2.0".
func UserAgent() string {
	return userAgentProduct + "/" + GetVersionInfo().Version
}
