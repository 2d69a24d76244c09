package keys

import (
	"fmt"
	"strings"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Cache returns the versioned cache key for a bundle: {name}_{version}.
func Cache(name, version string) string {
	return fmt.Sprintf("%s_%s", sanitizeKey(name), sanitizeKey(version))
}

// Object returns the object-store key a cache entry is kept under.
func Object(cacheKey string) string {
	return fmt.Sprintf("geo_cache/%s.cache", cacheKey)
}

// File returns the file name a cache entry is kept under on local disk.
func File(cacheKey string) string {
	return cacheKey + ".cache"
}
