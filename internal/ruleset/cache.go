package ruleset

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Cache manages the local on-disk cache of extracted pattern bundles.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir, creating it if necessary.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Get returns the extracted path for spec if a valid, unexpired, checksum-matching
// entry exists. Returns an error (cache miss) otherwise.
func (c *Cache) Get(spec Spec, expectedChecksum string) (string, error) {
	entry, err := c.loadEntry(spec)
	if err != nil {
		return "", err
	}

	if time.Now().After(entry.ExpiresAt) {
		return "", fmt.Errorf("cache expired")
	}
	if entry.Checksum != expectedChecksum {
		return "", fmt.Errorf("checksum mismatch")
	}
	if _, err := os.Stat(entry.Path); os.IsNotExist(err) {
		return "", fmt.Errorf("cached path missing")
	}

	return entry.Path, nil
}

// Set records a freshly downloaded bundle as cached until ttl elapses.
func (c *Cache) Set(spec Spec, extractedPath, checksum string, ttl time.Duration) error {
	entry := &CacheEntry{
		Spec:      spec,
		Path:      extractedPath,
		Checksum:  checksum,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	return c.saveEntry(entry)
}

// Invalidate removes a cached bundle and its extracted files.
func (c *Cache) Invalidate(spec Spec) error {
	if err := os.Remove(c.entryPath(spec)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.RemoveAll(c.extractedPath(spec))
}

func (c *Cache) entryPath(spec Spec) string {
	return filepath.Join(c.dir, spec.Language, fmt.Sprintf("%s.json", spec.Bundle))
}

func (c *Cache) extractedPath(spec Spec) string {
	return filepath.Join(c.dir, spec.Language, spec.Bundle)
}

func (c *Cache) loadEntry(spec Spec) (*CacheEntry, error) {
	data, err := os.ReadFile(c.entryPath(spec))
	if err != nil {
		return nil, err
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Cache) saveEntry(entry *CacheEntry) error {
	path := c.entryPath(entry.Spec)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// VerifyChecksum computes the SHA-256 of filePath and compares it to expectedChecksum.
func VerifyChecksum(filePath, expectedChecksum string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	actual := fmt.Sprintf("%x", h.Sum(nil))
	if actual != expectedChecksum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedChecksum, actual)
	}
	return nil
}
