// Package misc holds program identity set at build time.
package misc

import (
	"runtime/debug"
	"sync"
)

// Overridden with -ldflags "-X csseng/misc.version=... -X csseng/misc.gitHash=...".
var (
	appName = "csseng"
	version = ""
	gitHash = ""
)

var buildInfo = sync.OnceValue(func() (info struct{ version, hash string }) {
	info.version, info.hash = version, gitHash
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if info.version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.version = bi.Main.Version
	}
	if info.hash == "" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.hash = s.Value
				break
			}
		}
	}
	return
})

func GetAppName() string {
	return appName
}

// GetVersion returns the program version, "dev" when unknown.
func GetVersion() string {
	if v := buildInfo().version; v != "" {
		return v
	}
	return "dev"
}

func GetGitHash() string {
	if h := buildInfo().hash; h != "" {
		return h
	}
	return "unknown"
}
