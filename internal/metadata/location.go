package metadata

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const metadataSuffix = "$metadata"

// IsRemote reports whether location is fetched over HTTP.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// NormalizeLocation applies the location rules in order: an existing local
// file becomes its absolute path, and an HTTP(S) URL not already ending in
// $metadata gets exactly one "/$metadata" appended.
func NormalizeLocation(location string) string {
	if info, err := os.Stat(location); err == nil && !info.IsDir() {
		if abs, err := filepath.Abs(location); err == nil {
			return abs
		}
		return location
	}

	if strings.HasPrefix(location, "http") && !strings.HasSuffix(location, metadataSuffix) {
		normalized, err := purell.NormalizeURLString(location, purell.FlagsSafe)
		if err != nil {
			normalized = location
		}
		return strings.TrimRight(normalized, "/") + "/" + metadataSuffix
	}

	return location
}

// LocalPath maps a file:// URL to a filesystem path; other locations are
// returned unchanged.
func LocalPath(location string) string {
	if !strings.HasPrefix(strings.ToLower(location), "file://") {
		return location
	}
	u, err := url.Parse(location)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(location, location[:len("file://")])
	}
	return filepath.FromSlash(u.Path)
}
