// Package config holds the compiled-in list of themes to build.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/JamesIves/vgui.css/internal/theme"
)

//go:embed themes.toml
var manifest []byte

// Manifest is the decoded theme list.
type Manifest struct {
	Themes []theme.Spec `toml:"theme"`
}

// Themes returns the built-in themes in build order.
func Themes() ([]theme.Spec, error) {
	return ParseManifest(manifest)
}

// ParseManifest decodes and validates a theme manifest. Unknown keys,
// incomplete entries and duplicate names are rejected.
func ParseManifest(data []byte) ([]theme.Spec, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse manifest: %s", strict.String())
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Themes) == 0 {
		return nil, errors.New("manifest lists no themes")
	}

	seen := make(map[string]bool, len(m.Themes))
	for _, spec := range m.Themes {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("theme %q is listed twice", spec.Name)
		}
		seen[spec.Name] = true
	}
	return m.Themes, nil
}
