// Package cache keeps slow-changing lookups on disk: the location lists of
// the prayer time API and the IP geolocation result.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/vakit/internal/geo"
)

const (
	listCacheFile = "%s_%s.json" // kind, parent id
	geoCacheFile  = "geolocation.json"

	// ListTTL bounds how long country, city and district lists are reused.
	ListTTL = 7 * 24 * time.Hour
	// GeoTTL bounds how long an IP lookup is reused.
	GeoTTL = 24 * time.Hour
)

// List kinds.
const (
	Countries = "countries"
	Cities    = "cities"
	Districts = "districts"
)

// Cache is a directory of JSON files.
type Cache struct {
	dir string
	now func() time.Time
}

// ListEntry is a cached name -> id list.
type ListEntry struct {
	Kind     string            `json:"kind"`
	ParentID string            `json:"parent_id,omitempty"`
	Items    map[string]string `json:"items"`
	CachedAt time.Time         `json:"cached_at"`
}

// GeoEntry is a cached geolocation result.
type GeoEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// Dir returns the default cache directory, $XDG_CACHE_HOME/vakit or
// ~/.cache/vakit.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "vakit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "vakit"), nil
}

// New creates a Cache rooted at dir, or at Dir() when dir is empty.
func New(dir string) (*Cache, error) {
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir, now: time.Now}, nil
}

// Path returns the cache directory.
func (c *Cache) Path() string { return c.dir }

func (c *Cache) listPath(kind, parentID string) string {
	if parentID == "" {
		parentID = "all"
	}
	return filepath.Join(c.dir, fmt.Sprintf(listCacheFile, kind, filepath.Base(parentID)))
}

// LoadList returns a cached list, or nil when it is missing, unreadable or
// older than ListTTL.
func (c *Cache) LoadList(kind, parentID string) map[string]string {
	var entry ListEntry
	if !c.read(c.listPath(kind, parentID), &entry) {
		return nil
	}
	if entry.Kind != kind || entry.ParentID != parentID {
		return nil
	}
	if c.now().Sub(entry.CachedAt) > ListTTL {
		return nil
	}
	return entry.Items
}

// SaveList stores a list.
func (c *Cache) SaveList(kind, parentID string, items map[string]string) error {
	return c.write(c.listPath(kind, parentID), ListEntry{
		Kind:     kind,
		ParentID: parentID,
		Items:    items,
		CachedAt: c.now(),
	})
}

// LoadGeo returns the cached location, or nil when missing or older than
// GeoTTL.
func (c *Cache) LoadGeo() *geo.Location {
	var entry GeoEntry
	if !c.read(filepath.Join(c.dir, geoCacheFile), &entry) {
		return nil
	}
	if c.now().Sub(entry.CachedAt) > GeoTTL {
		return nil
	}
	return &entry.Location
}

// SaveGeo stores a location.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	return c.write(filepath.Join(c.dir, geoCacheFile), GeoEntry{
		Location: *loc,
		CachedAt: c.now(),
	})
}

// Clear removes every cached file.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (c *Cache) read(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *Cache) write(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
