// Package themes carries built-in theme sources.
package themes

import "embed"

// FS holds base and default themes.
//
//go:embed *.yml
var FS embed.FS
