package assets

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Kind partitions the cache into subdirectories.
type Kind string

const (
	// KindOriginal holds full-resolution downloads of photos being edited.
	KindOriginal Kind = "originals"
	// KindPreview holds locally rendered edit previews.
	KindPreview Kind = "previews"
)

// Cache is the companion's on-disk asset cache. Everything in it can be
// regenerated from the server; deleting the directory is always safe.
type Cache struct {
	basePath string
}

// NewCache creates the cache rooted at basePath, ensuring the per-kind
// subdirectories exist.
func NewCache(basePath string) (*Cache, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("assets: invalid base path '%s': %w", basePath, err)
	}

	for _, kind := range []Kind{KindOriginal, KindPreview} {
		dir := filepath.Join(absBasePath, string(kind))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("assets: failed to create %s: %w", dir, err)
		}
	}

	log.Printf("assets: cache initialized at %s", absBasePath)
	return &Cache{basePath: absBasePath}, nil
}

// Path resolves the absolute path of a cached file, refusing names that
// would escape the cache directory.
func (c *Cache) Path(kind Kind, filename string) (string, error) {
	full := filepath.Join(c.basePath, string(kind), filename)
	if !strings.HasPrefix(filepath.Clean(full), c.basePath) {
		return "", fmt.Errorf("assets: filename '%s' resolves outside the cache", filename)
	}
	return full, nil
}

// Save writes data to the cache and returns the absolute path used.
func (c *Cache) Save(kind Kind, filename string, data io.Reader) (string, error) {
	full, err := c.Path(kind, filename)
	if err != nil {
		return "", err
	}

	file, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("assets: creating %s: %w", full, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("assets: writing %s: %w", full, err)
	}
	return full, nil
}

// Open returns a reader for a cached file. os.ErrNotExist signals a cache
// miss.
func (c *Cache) Open(kind Kind, filename string) (io.ReadCloser, error) {
	full, err := c.Path(kind, filename)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Remove deletes a cached file; a missing file is not an error.
func (c *Cache) Remove(kind Kind, filename string) error {
	full, err := c.Path(kind, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("assets: removing %s: %w", full, err)
	}
	return nil
}
