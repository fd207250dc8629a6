// Package misc keeps build related program information.
package misc

import (
	"runtime/debug"
)

// set by linker
var (
	version = "dev"
	gitHash = ""
)

const appName = "pdfstyle"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns linker provided hash or falls back to VCS information
// recorded by the toolchain.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
