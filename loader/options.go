package loader

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/NCSOPHAL/landscapist"
)

// Construction defaults.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultUserAgent     = "landscapist"
	DefaultMaxBytes      = int64(32) << 20
	DefaultMemoryEntries = 32
	DefaultDiskBudget    = int64(256) << 20
)

type settings struct {
	client        *http.Client
	timeout       time.Duration
	userAgent     string
	maxBytes      int64
	cacheDir      string
	diskBudget    int64
	memoryEntries int
	diskDisabled  bool
	fetchers      []Fetcher
	decoders      map[landscapist.Format]DecodeFunc
	log           zerolog.Logger
}

func defaultSettings() settings {
	return settings{
		timeout:       DefaultTimeout,
		userAgent:     DefaultUserAgent,
		maxBytes:      DefaultMaxBytes,
		diskBudget:    DefaultDiskBudget,
		memoryEntries: DefaultMemoryEntries,
		log:           zerolog.Nop(),
	}
}

// Option adjusts loader construction.
type Option func(*settings)

// WithHTTPClient substitutes the HTTP client used for network fetches.
// It overrides WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) { s.client = client }
}

// WithTimeout bounds each network fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithUserAgent sets the User-Agent for network fetches.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithMaxBytes bounds the encoded size of any fetched image. Zero or
// negative disables the bound.
func WithMaxBytes(n int64) Option {
	return func(s *settings) { s.maxBytes = n }
}

// WithCacheDir places the disk cache at dir instead of the user cache
// directory.
func WithCacheDir(dir string) Option {
	return func(s *settings) { s.cacheDir = dir }
}

// WithDiskBudget bounds the disk cache size in bytes. Zero or negative
// means unbounded.
func WithDiskBudget(n int64) Option {
	return func(s *settings) { s.diskBudget = n }
}

// WithMemoryEntries sizes the in-memory payload cache. Zero or negative
// disables it.
func WithMemoryEntries(n int) Option {
	return func(s *settings) { s.memoryEntries = n }
}

// WithoutDiskCache disables on-disk persistence entirely.
func WithoutDiskCache() Option {
	return func(s *settings) { s.diskDisabled = true }
}

// WithFetcher registers a fetcher. Its schemes take precedence over the
// built-in fetchers.
func WithFetcher(f Fetcher) Option {
	return func(s *settings) {
		if f != nil {
			s.fetchers = append(s.fetchers, f)
		}
	}
}

// WithDecoder registers or replaces the decoder for a format.
func WithDecoder(format landscapist.Format, fn DecodeFunc) Option {
	return func(s *settings) {
		if fn == nil {
			return
		}
		if s.decoders == nil {
			s.decoders = make(map[landscapist.Format]DecodeFunc)
		}
		s.decoders[format] = fn
	}
}

// WithLogger routes pipeline logging through log.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}
