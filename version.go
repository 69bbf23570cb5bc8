package inertia

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/singleflight"
)

// DefaultVersion is the fixed fallback asset version used when no version
// source is configured and no build manifest can be detected.
const DefaultVersion = "1"

// DefaultManifestPaths lists the build-manifest locations probed by
// automatic asset-version detection, in order.
//
//nolint:gochecknoglobals
var DefaultManifestPaths = []string{
	"public/build/manifest.json",
	"public/mix-manifest.json",
	"dist/.vite/manifest.json",
	"dist/manifest.json",
}

// VersionFunc computes the current asset version.
//
// The renderer memoizes the result in its version cache; an expensive
// computation (hashing a manifest, shelling out to a build tool) runs once
// per cache generation, not once per request.
type VersionFunc func() (string, error)

// StaticVersion returns a VersionFunc yielding a fixed version string.
func StaticVersion(version string) VersionFunc {
	return func() (string, error) { return version, nil }
}

// ManifestVersion returns a VersionFunc that hashes the first build manifest
// found among paths (DefaultManifestPaths when none are given) in fsys.
// When no manifest exists, it falls back to DefaultVersion.
func ManifestVersion(fsys fs.FS, paths ...string) VersionFunc {
	if len(paths) == 0 {
		paths = DefaultManifestPaths
	}

	return func() (string, error) {
		for _, path := range paths {
			b, err := fs.ReadFile(fsys, path)
			if err != nil {
				continue
			}

			sum := blake3.Sum256(b)

			return hex.EncodeToString(sum[:8]), nil
		}

		return DefaultVersion, nil
	}
}

// VersionCache memoizes computed asset versions per key.
//
// Reads are safe under concurrent request handling. The first computation
// for a key is deduplicated, so concurrent readers of the same cache
// generation always observe a single value. Invalidate starts a new
// generation for a key.
type VersionCache struct {
	values map[string]string
	group  singleflight.Group
	mu     sync.RWMutex
}

// NewVersionCache creates an empty version cache.
func NewVersionCache() *VersionCache {
	return &VersionCache{values: make(map[string]string)}
}

// Get returns the memoized version for key, computing it via compute on the
// first call of a generation.
func (c *VersionCache) Get(key string, compute VersionFunc) (string, error) {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()

	if ok {
		return v, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the group: a concurrent Do may have stored already.
		c.mu.RLock()
		v, ok := c.values[key]
		c.mu.RUnlock()

		if ok {
			return v, nil
		}

		computed, err := compute()
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.values[key] = computed
		c.mu.Unlock()

		return computed, nil
	})
	if err != nil {
		return "", fmt.Errorf("inertia: failed to compute asset version: %w", err)
	}

	return val.(string), nil //nolint:forcetypeassert
}

// Invalidate drops the memoized version for key. The next Get recomputes it.
func (c *VersionCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
}

//nolint:gochecknoglobals
var defaultVersionCache = NewVersionCache()
