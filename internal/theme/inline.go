package theme

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// urlRegex matches url(ref), url("ref") and url('ref').
var urlRegex = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)

// InlineExtensions lists the asset extensions that are embedded as data URIs.
// Matching is case-sensitive.
var InlineExtensions = []string{".png"}

// InlineAssets replaces url() references to local inlineable assets with
// base64 data URIs. References are resolved against assetDir. Remote,
// already inlined, missing and non-inlineable references are left as they
// are. An asset that exists but cannot be read is an error.
func InlineAssets(css, assetDir string) (string, error) {
	out, _, err := InlineAssetsCount(css, assetDir)
	return out, err
}

// InlineAssetsCount is InlineAssets that also reports how many references
// were replaced.
func InlineAssetsCount(css, assetDir string) (string, int, error) {
	var firstErr error
	count := 0

	out := urlRegex.ReplaceAllStringFunc(css, func(match string) string {
		if firstErr != nil {
			return match
		}
		submatch := urlRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		ref := submatch[1]

		if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "http") {
			return match
		}

		var fullPath string
		if filepath.IsAbs(ref) {
			fullPath = ref
		} else {
			fullPath = filepath.Join(assetDir, ref)
		}

		if _, err := os.Stat(fullPath); err != nil {
			return match
		}
		ext := assetExt(fullPath)
		if !slices.Contains(InlineExtensions, ext) {
			return match
		}

		uri, err := DataURI(fullPath)
		if err != nil {
			firstErr = err
			return match
		}
		count++
		return "url('" + uri + "')"
	})
	if firstErr != nil {
		return "", 0, firstErr
	}
	return out, count, nil
}

// DataURI reads path and encodes it as a data:image URI. The media subtype
// is the file extension without its dot.
func DataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read asset: %w", err)
	}
	ext := strings.TrimPrefix(assetExt(path), ".")
	return "data:image/" + ext + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// assetExt is filepath.Ext except that a dotfile such as ".png" has no
// extension.
func assetExt(path string) string {
	if strings.LastIndex(filepath.Base(path), ".") == 0 {
		return ""
	}
	return filepath.Ext(path)
}
