package theme

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Spec describes one theme build. Paths are relative to the build root.
type Spec struct {
	Name     string `toml:"name"`      // Theme identifier used in console output
	Source   string `toml:"source"`    // LESS entry point
	Output   string `toml:"output"`    // Destination CSS file
	AssetDir string `toml:"asset_dir"` // Base directory for url() references
}

// Validate reports the first missing field.
func (s Spec) Validate() error {
	switch {
	case s.Name == "":
		return errors.New("theme has no name")
	case s.Source == "":
		return fmt.Errorf("theme %q: source is required", s.Name)
	case s.Output == "":
		return fmt.Errorf("theme %q: output is required", s.Name)
	case s.AssetDir == "":
		return fmt.Errorf("theme %q: asset_dir is required", s.Name)
	}
	return nil
}

// Resolve returns a copy of s with relative paths joined onto root.
func (s Spec) Resolve(root string) Spec {
	if root == "" {
		return s
	}
	join := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	s.Source = join(s.Source)
	s.Output = join(s.Output)
	s.AssetDir = join(s.AssetDir)
	return s
}
