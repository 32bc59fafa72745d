// Package gamedata provides the embedded default configuration and the
// sub-grammars it references.
package gamedata

import "embed"

// DefaultConfig is the name of the embedded default configuration.
const DefaultConfig = "default.toml"

// dataFS embeds the default config and grammar files at build time.
//
//go:embed *.toml grammars/*.toml
var dataFS embed.FS

// FS returns the embedded filesystem containing the default data.
func FS() embed.FS {
	return dataFS
}
