package gamedata

import (
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and decodes a TOML file from fsys. Keys keep their case, which
// matters because grammar symbols are case sensitive.
func Load[T any](fsys fs.FS, filename string) (T, error) {
	var result T

	content, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if err := toml.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to parse TOML from %s: %w", filename, err)
	}

	return result, nil
}

// MustLoad reads and decodes an embedded TOML file, panicking on error.
// Use this for data that ships with the binary.
func MustLoad[T any](filename string) T {
	result, err := Load[T](dataFS, filename)
	if err != nil {
		panic(err)
	}
	return result
}
