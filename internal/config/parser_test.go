package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "landscapist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "log_level: debug\n")

	cfg, err := ParseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, 256, cfg.Cache.MaxDiskMB)
	assert.Equal(t, "fit", cfg.Render.Scale)
}

func TestParseConfigFullDocument(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log_level: warn
cache:
  dir: /tmp/landscapist-cache
  max_disk_mb: 64
  memory_entries: 8
http:
  timeout_seconds: 5
  user_agent: gallery/1.0
  max_image_mb: 4
render:
  scale: fill
  quality: high
  filter: grayscale
  ascii: true
sources:
  - name: logo
    url: https://example.com/logo.png
    alt: Project logo
  - name: banner
    url: git+https://example.com/assets.git?ref=main#banner.png
    headers:
      Authorization: Bearer token
`)

	cfg, err := ParseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/landscapist-cache", cfg.Cache.Dir)
	assert.Equal(t, 64, cfg.Cache.MaxDiskMB)
	assert.Equal(t, 8, cfg.Cache.MemoryEntries)
	assert.Equal(t, 5, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, "gallery/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, "fill", cfg.Render.Scale)
	assert.Equal(t, "high", cfg.Render.Quality)
	assert.Equal(t, "grayscale", cfg.Render.Filter)
	assert.True(t, cfg.Render.ASCII)

	require.Len(t, cfg.Sources, 2)
	byName := SourceMap(cfg.Sources)
	assert.Equal(t, "https://example.com/logo.png", byName["logo"].URL)
	assert.Equal(t, "Bearer token", byName["banner"].Headers["Authorization"])
}

func TestParseConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var perr *pkgerrors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParseConfigMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "cache:\n  dir: [\n")

	_, err := ParseConfig(path)
	require.Error(t, err)

	var perr *pkgerrors.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, path, perr.Path)
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "render:\n  scale: zoom\n")

	_, err := ParseConfig(path)
	require.Error(t, err)

	var verr *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}
