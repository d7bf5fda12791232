// Package theme describes the themes the builder produces and inlines the
// local image assets their compiled stylesheets reference.
package theme
