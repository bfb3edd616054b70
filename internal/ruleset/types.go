// Package ruleset downloads, verifies, caches, and loads
// versioned bundles of mitigation.Pattern definitions, so a project can
// pull in a curated pattern set (e.g. "go/web-framework-sanitizers")
// instead of hand-authoring every pattern in its own config.
package ruleset

import "time"

// Spec identifies one bundle: a language scope and a named bundle within
// it, written as "go/security" on the command line.
type Spec struct {
	Language string
	Bundle   string
}

// String renders a Spec back to its "language/bundle" form.
func (s Spec) String() string {
	return s.Language + "/" + s.Bundle
}

// Manifest is the per-language index of available bundles, fetched from
// the configured base URL as "<baseURL>/<language>/manifest.json".
type Manifest struct {
	Language string             `json:"language,omitempty"`
	Bundles  map[string]*Bundle `json:"bundles"`
}

// Bundle is one named set of patterns: its download location, integrity
// checksum, and size, used to validate what was actually fetched.
type Bundle struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PatternCount int   `json:"pattern_count,omitempty"`
	ZipSize     int64  `json:"zip_size,omitempty"`
	Checksum    string `json:"checksum"`
	DownloadURL string `json:"download_url"`
}

// CacheEntry records a previously downloaded and extracted bundle.
type CacheEntry struct {
	Spec      Spec      `json:"spec"`
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Config configures a Downloader.
type Config struct {
	BaseURL       string
	CacheDir      string
	CacheTTL      time.Duration
	HTTPTimeout   time.Duration
	RetryAttempts int
}
