package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Sources = []Source{
		{Name: "logo", URL: "https://example.com/logo.png"},
	}
	return cfg
}

func TestValidateConfigNil(t *testing.T) {
	t.Parallel()

	err := ValidateConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is nil")
}

func TestValidateDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, ValidateConfig(&cfg))
}

func TestValidateLogLevel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.LogLevel = "warn"
	require.NoError(t, ValidateConfig(&cfg))

	cfg.LogLevel = "chatty"
	err := ValidateConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestValidateScaleMode(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	for _, mode := range []string{"fit", "fill", "stretch", "original"} {
		cfg.Render.Scale = mode
		assert.NoError(t, ValidateConfig(&cfg), "mode %q", mode)
	}

	cfg.Render.Scale = "zoom"
	assert.Error(t, ValidateConfig(&cfg))
}

func TestValidateQuality(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Render.Quality = "ultra"
	assert.Error(t, ValidateConfig(&cfg))
}

func TestValidateSourceName(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Sources[0].Name = "My Logo"
	err := ValidateConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_name")
}

func TestValidateDuplicateSourceNames(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Sources = append(cfg.Sources, Source{Name: "logo", URL: "https://example.com/other.png"})

	err := ValidateConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate source name "logo"`)
}

func TestValidateBoundedValues(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.HTTP.TimeoutSeconds = 100000
	assert.Error(t, ValidateConfig(&cfg))

	cfg = validConfig()
	cfg.Cache.MaxDiskMB = -5
	assert.Error(t, ValidateConfig(&cfg))

	cfg = validConfig()
	cfg.HTTP.UserAgent = strings.Repeat("x", 300)
	assert.Error(t, ValidateConfig(&cfg))
}

func TestIsValidImageSource(t *testing.T) {
	t.Parallel()

	valid := []string{
		"https://example.com/a.png",
		"http://example.com/a.png",
		"file:///tmp/a.png",
		"git+https://example.com/repo.git?ref=main#a.png",
		"git+file:///srv/repo#a.png",
		"/absolute/path.png",
		"./relative/path.png",
		"../up/path.png",
	}
	for _, src := range valid {
		assert.True(t, isValidImageSource(src), "source %q", src)
	}

	invalid := []string{
		"",
		"   ",
		"http://",
		"ftp://example.com/a.png",
		"git+https://example.com/repo.git",
		"bare/relative.png",
		"/escape/../root",
		"/trailing/..",
		"with\x00null",
	}
	for _, src := range invalid {
		assert.False(t, isValidImageSource(src), "source %q", src)
	}
}
