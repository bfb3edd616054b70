package ruleset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// ManifestLoader fetches the per-language bundle index from the configured
// base URL.
type ManifestLoader struct {
	baseURL    string
	httpClient *http.Client
}

// NewManifestLoader creates a loader against baseURL.
func NewManifestLoader(baseURL string) *ManifestLoader {
	return &ManifestLoader{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LoadLanguageManifest fetches "<baseURL>/<language>/manifest.json".
func (m *ManifestLoader) LoadLanguageManifest(ctx context.Context, language string) (*Manifest, error) {
	url := fmt.Sprintf("%s/%s/manifest.json", m.baseURL, language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest fetch failed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	manifest.Language = language

	return &manifest, nil
}

// GetBundle retrieves bundle metadata by name.
func (m *Manifest) GetBundle(name string) (*Bundle, error) {
	bundle, ok := m.Bundles[name]
	if !ok {
		return nil, fmt.Errorf("bundle not found: %s", name)
	}
	return bundle, nil
}

// GetAllBundleNames returns a sorted list of all bundle names. Specs of
// the form "language/all" are not expanded; Download looks "all" up as an
// ordinary bundle name.
func (m *Manifest) GetAllBundleNames() []string {
	names := make([]string, 0, len(m.Bundles))
	for name := range m.Bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
