package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/NCSOPHAL/landscapist"
	"github.com/NCSOPHAL/landscapist/internal/config"
	"github.com/NCSOPHAL/landscapist/internal/logger"
	"github.com/NCSOPHAL/landscapist/loader"
)

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".landscapist", "config.yaml"), nil
}

// loadConfig resolves the effective configuration. An explicit --config
// path must parse; the default path is optional and missing files fall
// back to built-in defaults.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	if flags.configPath != "" {
		return config.ParseConfig(flags.configPath)
	}

	defaults := config.Default()
	path, err := defaultConfigPath()
	if err != nil {
		return &defaults, nil
	}
	if _, err := os.Stat(path); err != nil {
		return &defaults, nil
	}

	return config.ParseConfig(path)
}

func buildLogger(cfg *config.Config, verbose bool) (*logger.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	return logger.New(logger.Options{Level: level, HumanReadable: true})
}

func buildLoader(cfg *config.Config, log *logger.Logger) (*loader.Loader, error) {
	opts := []loader.Option{
		loader.WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		loader.WithMaxBytes(int64(cfg.HTTP.MaxImageMB) << 20),
		loader.WithMemoryEntries(cfg.Cache.MemoryEntries),
		loader.WithDiskBudget(int64(cfg.Cache.MaxDiskMB) << 20),
		loader.WithLogger(log.Base()),
	}
	if cfg.HTTP.UserAgent != "" {
		opts = append(opts, loader.WithUserAgent(cfg.HTTP.UserAgent))
	}
	if cfg.Cache.Dir != "" {
		opts = append(opts, loader.WithCacheDir(cfg.Cache.Dir))
	}
	if cfg.Cache.Disabled {
		opts = append(opts, loader.WithoutDiskCache())
	}

	return loader.New(opts...)
}

// resolveSource expands a named source from the configuration into its
// URL, headers and alt text. Anything else passes through as a literal
// source.
func resolveSource(cfg *config.Config, source string) (landscapist.Request, string) {
	named, ok := config.SourceMap(cfg.Sources)[source]
	if !ok {
		return landscapist.NewRequest(source), ""
	}

	req := landscapist.NewRequest(named.URL)
	for key, value := range named.Headers {
		req = req.WithHeader(key, value)
	}
	return req, named.Alt
}

func resolveCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return loader.DefaultCacheDir()
}
