package ruleset_test

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/ruleset"
)

func createTestZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func checksumOf(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	h := sha256.New()
	_, err = io.Copy(h, f)
	require.NoError(t, err)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func TestDownloader_Download_SuccessThenCacheHit(t *testing.T) {
	tempDir := t.TempDir()
	zipPath := filepath.Join(tempDir, "bundle.zip")
	createTestZip(t, zipPath, map[string]string{
		"patterns.json": `{"patterns":[{"id":"P1","name":"sanitizer","mitigates":["xss"],"match_kind":"function_call"}]}`,
	})
	zipData, err := os.ReadFile(zipPath)
	require.NoError(t, err)
	checksum := checksumOf(t, zipPath)

	var serverURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/go/manifest.json":
			manifest := ruleset.Manifest{
				Bundles: map[string]*ruleset.Bundle{
					"security": {
						Name:        "Security",
						ZipSize:     int64(len(zipData)),
						Checksum:    checksum,
						DownloadURL: serverURL + "/go/security.zip",
					},
				},
			}
			_ = json.NewEncoder(w).Encode(manifest)
		case "/go/security.zip":
			w.Write(zipData)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	serverURL = server.URL
	defer server.Close()

	downloader, err := ruleset.NewDownloader(ruleset.Config{
		BaseURL:       server.URL,
		CacheDir:      filepath.Join(tempDir, "cache"),
		CacheTTL:      time.Hour,
		HTTPTimeout:   10 * time.Second,
		RetryAttempts: 3,
	})
	require.NoError(t, err)

	extracted, err := downloader.Download(context.Background(), "go/security")
	require.NoError(t, err)

	patterns, err := ruleset.LoadPatterns(extracted)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "P1", patterns[0].ID)

	cached, err := downloader.Download(context.Background(), "go/security")
	require.NoError(t, err)
	assert.Equal(t, extracted, cached)
}

func TestDownloader_Download_InvalidSpec(t *testing.T) {
	tempDir := t.TempDir()
	downloader, err := ruleset.NewDownloader(ruleset.Config{
		BaseURL:       "https://example.com",
		CacheDir:      tempDir,
		CacheTTL:      time.Hour,
		HTTPTimeout:   time.Second,
		RetryAttempts: 1,
	})
	require.NoError(t, err)

	_, err = downloader.Download(context.Background(), "invalid-spec")
	assert.Error(t, err)
}

func TestDownloader_Download_ChecksumMismatch(t *testing.T) {
	tempDir := t.TempDir()
	zipPath := filepath.Join(tempDir, "bundle.zip")
	createTestZip(t, zipPath, map[string]string{"patterns.json": `{"patterns":[]}`})
	zipData, err := os.ReadFile(zipPath)
	require.NoError(t, err)

	var serverURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/go/manifest.json":
			manifest := ruleset.Manifest{
				Bundles: map[string]*ruleset.Bundle{
					"security": {Checksum: "wrongchecksum", DownloadURL: serverURL + "/go/security.zip"},
				},
			}
			_ = json.NewEncoder(w).Encode(manifest)
		case "/go/security.zip":
			w.Write(zipData)
		}
	}))
	serverURL = server.URL
	defer server.Close()

	downloader, err := ruleset.NewDownloader(ruleset.Config{
		BaseURL:       server.URL,
		CacheDir:      filepath.Join(tempDir, "cache"),
		CacheTTL:      time.Hour,
		HTTPTimeout:   10 * time.Second,
		RetryAttempts: 1,
	})
	require.NoError(t, err)

	_, err = downloader.Download(context.Background(), "go/security")
	assert.Error(t, err)
}

func TestDownloader_RefreshCache_InvalidatesEntry(t *testing.T) {
	tempDir := t.TempDir()
	downloader, err := ruleset.NewDownloader(ruleset.Config{
		BaseURL:       "https://example.com",
		CacheDir:      tempDir,
		CacheTTL:      time.Hour,
		HTTPTimeout:   time.Second,
		RetryAttempts: 1,
	})
	require.NoError(t, err)

	err = downloader.RefreshCache("go/security")
	assert.NoError(t, err)
}
