package ruleset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Downloader fetches, verifies, extracts, and caches remote pattern bundles.
type Downloader struct {
	config         Config
	cache          *Cache
	manifestLoader *ManifestLoader
	httpClient     *http.Client
}

// NewDownloader builds a Downloader, creating the on-disk cache directory.
func NewDownloader(config Config) (*Downloader, error) {
	cache, err := NewCache(config.CacheDir)
	if err != nil {
		return nil, err
	}

	return &Downloader{
		config:         config,
		cache:          cache,
		manifestLoader: NewManifestLoader(config.BaseURL),
		httpClient:     &http.Client{Timeout: config.HTTPTimeout},
	}, nil
}

// Download resolves spec, checks the cache, and downloads on a miss.
// It returns the path to the extracted bundle directory.
func (d *Downloader) Download(ctx context.Context, spec string) (string, error) {
	bundleSpec, err := ParseSpec(spec)
	if err != nil {
		return "", err
	}
	if err := bundleSpec.Validate(); err != nil {
		return "", err
	}

	manifest, err := d.manifestLoader.LoadLanguageManifest(ctx, bundleSpec.Language)
	if err != nil {
		return "", fmt.Errorf("failed to load manifest: %w", err)
	}

	bundle, err := manifest.GetBundle(bundleSpec.Bundle)
	if err != nil {
		return "", err
	}

	if cachedPath, err := d.cache.Get(bundleSpec, bundle.Checksum); err == nil {
		return cachedPath, nil
	}

	return d.downloadAndCache(ctx, bundleSpec, bundle)
}

func (d *Downloader) downloadAndCache(ctx context.Context, spec Spec, bundle *Bundle) (string, error) {
	zipPath, err := d.downloadZip(ctx, bundle.DownloadURL, bundle.ZipSize)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer os.Remove(zipPath)

	if err := VerifyChecksum(zipPath, bundle.Checksum); err != nil {
		return "", fmt.Errorf("checksum verification failed: %w", err)
	}

	extractPath := filepath.Join(d.config.CacheDir, spec.Language, spec.Bundle)
	if err := os.MkdirAll(extractPath, 0755); err != nil {
		return "", err
	}

	if _, err := d.extractZip(zipPath, extractPath); err != nil {
		return "", fmt.Errorf("extraction failed: %w", err)
	}

	if err := d.cache.Set(spec, extractPath, bundle.Checksum, d.config.CacheTTL); err != nil {
		return "", fmt.Errorf("cache save failed: %w", err)
	}

	return extractPath, nil
}

func (d *Downloader) downloadZip(ctx context.Context, url string, expectedSize int64) (string, error) {
	tempFile, err := os.CreateTemp("", "ruleset-*.zip")
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	attempts := d.config.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Second * time.Duration(attempt))
			if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
				lastErr = err
				continue
			}
			if err := tempFile.Truncate(0); err != nil {
				lastErr = err
				continue
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}

		written, err := io.Copy(tempFile, resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if expectedSize > 0 && written != expectedSize {
			lastErr = fmt.Errorf("size mismatch: expected %d, got %d", expectedSize, written)
			continue
		}

		return tempFile.Name(), nil
	}

	return "", fmt.Errorf("download failed after %d attempts: %w", attempts, lastErr)
}

func (d *Downloader) extractZip(zipPath, destDir string) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for _, f := range r.File {
		if err := extractFile(f, destDir); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func extractFile(f *zip.File, destDir string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	path := filepath.Join(destDir, f.Name)

	cleanDest := filepath.Clean(destDir)
	cleanPath := filepath.Clean(path)
	relPath, err := filepath.Rel(cleanDest, cleanPath)
	if err != nil || (len(relPath) > 0 && (relPath[0:1] == "." || filepath.IsAbs(relPath))) {
		return fmt.Errorf("illegal file path: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, f.Mode())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, rc)
	return err
}

// RefreshCache invalidates a cached bundle so the next Download re-fetches it.
func (d *Downloader) RefreshCache(spec string) error {
	bundleSpec, err := ParseSpec(spec)
	if err != nil {
		return err
	}
	return d.cache.Invalidate(bundleSpec)
}
