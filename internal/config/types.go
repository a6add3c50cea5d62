package config

// Config is the full landscapist configuration document. Every field is
// optional; missing values fall back to the defaults in Default.
type Config struct {
	LogLevel string       `yaml:"log_level,omitempty" validate:"omitempty,log_level"`
	Cache    CacheConfig  `yaml:"cache,omitempty"`
	HTTP     HTTPConfig   `yaml:"http,omitempty"`
	Render   RenderConfig `yaml:"render,omitempty"`
	Sources  []Source     `yaml:"sources,omitempty" validate:"omitempty,dive"`
}

// CacheConfig controls the memory and disk caches.
type CacheConfig struct {
	Dir           string `yaml:"dir,omitempty"`
	MaxDiskMB     int    `yaml:"max_disk_mb,omitempty" validate:"omitempty,min=1,max=16384"`
	MemoryEntries int    `yaml:"memory_entries,omitempty" validate:"omitempty,min=0,max=4096"`
	Disabled      bool   `yaml:"disabled,omitempty"`
}

// HTTPConfig controls network fetches.
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1,max=3600"`
	UserAgent      string `yaml:"user_agent,omitempty" validate:"omitempty,max=200"`
	MaxImageMB     int    `yaml:"max_image_mb,omitempty" validate:"omitempty,min=1,max=1024"`
}

// RenderConfig sets default presentation options.
type RenderConfig struct {
	Scale   string `yaml:"scale,omitempty" validate:"omitempty,scale_mode"`
	Quality string `yaml:"quality,omitempty" validate:"omitempty,oneof=low high"`
	Filter  string `yaml:"filter,omitempty" validate:"omitempty,oneof=none grayscale sepia invert"`
	ASCII   bool   `yaml:"ascii,omitempty"`
}

// Source is a named image shortcut usable in place of a full URL.
type Source struct {
	Name    string            `yaml:"name" validate:"required,source_name"`
	URL     string            `yaml:"url" validate:"required,image_source"`
	Alt     string            `yaml:"alt,omitempty" validate:"omitempty,max=200"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Cache: CacheConfig{
			MaxDiskMB:     256,
			MemoryEntries: 32,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
			UserAgent:      "landscapist",
			MaxImageMB:     32,
		},
		Render: RenderConfig{
			Scale:   "fit",
			Quality: "low",
		},
	}
}

// SourceMap builds a lookup table for sources by name.
func SourceMap(sources []Source) map[string]Source {
	out := make(map[string]Source, len(sources))
	for _, src := range sources {
		out[src.Name] = src
	}
	return out
}
