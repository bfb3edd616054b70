package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/ruleset"
)

func TestCache_SetThenGet_Hit(t *testing.T) {
	dir := t.TempDir()
	cache, err := ruleset.NewCache(dir)
	require.NoError(t, err)

	spec := ruleset.Spec{Language: "go", Bundle: "security"}
	extracted := filepath.Join(dir, "go", "security")
	require.NoError(t, os.MkdirAll(extracted, 0755))

	require.NoError(t, cache.Set(spec, extracted, "abc123", time.Hour))

	path, err := cache.Get(spec, "abc123")
	require.NoError(t, err)
	assert.Equal(t, extracted, path)
}

func TestCache_Get_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	cache, err := ruleset.NewCache(dir)
	require.NoError(t, err)

	spec := ruleset.Spec{Language: "go", Bundle: "security"}
	extracted := filepath.Join(dir, "go", "security")
	require.NoError(t, os.MkdirAll(extracted, 0755))
	require.NoError(t, cache.Set(spec, extracted, "abc123", time.Hour))

	_, err = cache.Get(spec, "different")
	assert.Error(t, err)
}

func TestCache_Get_Expired(t *testing.T) {
	dir := t.TempDir()
	cache, err := ruleset.NewCache(dir)
	require.NoError(t, err)

	spec := ruleset.Spec{Language: "go", Bundle: "security"}
	extracted := filepath.Join(dir, "go", "security")
	require.NoError(t, os.MkdirAll(extracted, 0755))
	require.NoError(t, cache.Set(spec, extracted, "abc123", -time.Hour))

	_, err = cache.Get(spec, "abc123")
	assert.Error(t, err)
}

func TestCache_Get_MissingExtractedPath(t *testing.T) {
	dir := t.TempDir()
	cache, err := ruleset.NewCache(dir)
	require.NoError(t, err)

	spec := ruleset.Spec{Language: "go", Bundle: "security"}
	require.NoError(t, cache.Set(spec, filepath.Join(dir, "gone"), "abc123", time.Hour))

	_, err = cache.Get(spec, "abc123")
	assert.Error(t, err)
}

func TestCache_Invalidate_RemovesEntryAndFiles(t *testing.T) {
	dir := t.TempDir()
	cache, err := ruleset.NewCache(dir)
	require.NoError(t, err)

	spec := ruleset.Spec{Language: "go", Bundle: "security"}
	extracted := filepath.Join(dir, "go", "security")
	require.NoError(t, os.MkdirAll(extracted, 0755))
	require.NoError(t, cache.Set(spec, extracted, "abc123", time.Hour))

	require.NoError(t, cache.Invalidate(spec))

	_, err = cache.Get(spec, "abc123")
	assert.Error(t, err)
	_, statErr := os.Stat(extracted)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCache_Invalidate_NonExistentSpec_NoError(t *testing.T) {
	dir := t.TempDir()
	cache, err := ruleset.NewCache(dir)
	require.NoError(t, err)

	spec := ruleset.Spec{Language: "go", Bundle: "never-cached"}
	assert.NoError(t, cache.Invalidate(spec))
}

func TestVerifyChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	err := ruleset.VerifyChecksum(path, "0000")
	assert.Error(t, err)
}
