// Package loader implements the production image pipeline behind the
// landscapist.Loader contract: scheme-based fetchers (HTTP, filesystem,
// git), format-sniffing decoders, an LRU memory cache of decoded
// payloads and a persistent disk cache of encoded bytes. Concurrent
// loads of the same request identity are coalesced into a single fetch.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/NCSOPHAL/landscapist"
	"github.com/NCSOPHAL/landscapist/internal/diskcache"
	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

// Loader resolves image requests through fetch, decode and cache layers.
// All methods are safe for concurrent use.
type Loader struct {
	fetchers map[string]Fetcher
	decoders map[landscapist.Format]DecodeFunc
	mem      *memCache
	disk     *diskcache.Cache
	group    singleflight.Group
	log      zerolog.Logger
}

var _ landscapist.Loader = (*Loader)(nil)

// New builds a loader. Without options it fetches over HTTP with a 30s
// timeout, keeps 32 decoded payloads in memory and persists encoded
// bytes under the user cache directory.
func New(opts ...Option) (*Loader, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	client := s.client
	if client == nil {
		client = &http.Client{Timeout: s.timeout}
	}

	mem, err := newMemCache(s.memoryEntries)
	if err != nil {
		return nil, err
	}

	var disk *diskcache.Cache
	if !s.diskDisabled {
		dir := s.cacheDir
		if dir == "" {
			dir, err = DefaultCacheDir()
			if err != nil {
				return nil, err
			}
		}
		disk, err = diskcache.New(dir, s.diskBudget)
		if err != nil {
			return nil, err
		}
	}

	l := &Loader{
		fetchers: make(map[string]Fetcher),
		decoders: defaultDecoders(),
		mem:      mem,
		disk:     disk,
		log:      s.log,
	}

	builtin := []Fetcher{
		&fileFetcher{maxBytes: s.maxBytes},
		&httpFetcher{client: client, userAgent: s.userAgent, maxBytes: s.maxBytes},
		&gitFetcher{maxBytes: s.maxBytes},
	}
	for _, f := range append(builtin, s.fetchers...) {
		for _, scheme := range f.Schemes() {
			l.fetchers[scheme] = f
		}
	}
	for format, fn := range s.decoders {
		l.decoders[format] = fn
	}

	return l, nil
}

// DefaultCacheDir returns the disk cache location used when none is
// configured.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(base, "landscapist"), nil
}

// SupportedFormats lists the formats the built-in decoders understand.
func SupportedFormats() []landscapist.Format {
	decoders := defaultDecoders()
	formats := make([]landscapist.Format, 0, len(decoders))
	for format := range decoders {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Load resolves req into a payload. Identical concurrent requests share
// one fetch; a caller whose context dies while waiting on another
// caller's flight retries under its own context.
func (l *Loader) Load(ctx context.Context, req landscapist.Request) (*landscapist.Payload, error) {
	start := time.Now()

	if req.Empty() {
		return nil, pkgerrors.ErrEmptySource
	}

	// Directly supplied images bypass the pipeline entirely.
	if img := req.Image(); img != nil {
		return &landscapist.Payload{
			Image:   img,
			Format:  landscapist.FormatUnknown,
			From:    landscapist.DataSourceDirect,
			Elapsed: time.Since(start),
		}, nil
	}

	fp := req.Fingerprint()

	if !req.Refresh() {
		if payload, ok := l.mem.get(fp); ok {
			payload.From = landscapist.DataSourceMemory
			payload.Elapsed = time.Since(start)
			l.log.Debug().Str("source", describe(req)).Msg("memory cache hit")
			return &payload, nil
		}
	}

	// Refresh requests fly separately so they never join a flight that
	// may be serving cached bytes.
	flightKey := fp
	if req.Refresh() {
		flightKey += "!refresh"
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err, _ := l.group.Do(flightKey, func() (interface{}, error) {
			return l.resolve(ctx, req, fp)
		})
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() == nil {
				// The flight owner was cancelled, not us. Retry with this
				// caller as the new owner.
				continue
			}
			return nil, err
		}
		payload := v.(landscapist.Payload)
		payload.Elapsed = time.Since(start)
		return &payload, nil
	}
}

// resolve performs the uncached load: disk, then fetch, then decode,
// populating both caches on the way out.
func (l *Loader) resolve(ctx context.Context, req landscapist.Request, fp string) (landscapist.Payload, error) {
	// Raw bytes skip fetching.
	if data := req.Data(); len(data) > 0 {
		payload, err := l.decodeData(data)
		if err != nil {
			return landscapist.Payload{}, err
		}
		payload.From = landscapist.DataSourceDirect
		l.mem.add(fp, *payload)
		return *payload, nil
	}

	if !req.Refresh() && l.disk != nil {
		if data, err := l.disk.Get(fp); err == nil {
			payload, derr := l.decodeData(data)
			if derr == nil {
				payload.From = landscapist.DataSourceDisk
				l.mem.add(fp, *payload)
				l.log.Debug().Str("source", describe(req)).Msg("disk cache hit")
				return *payload, nil
			}
			// A corrupt entry is dropped so the fetch below repairs it.
			l.log.Warn().Err(derr).Str("source", describe(req)).Msg("corrupt disk cache entry")
			_ = l.disk.Delete(fp)
		}
	}

	scheme := schemeOf(req.URL())
	fetcher, ok := l.fetchers[scheme]
	if !ok {
		return landscapist.Payload{},
			pkgerrors.NewSourceError(req.URL(), fmt.Errorf("unsupported scheme %q", scheme))
	}

	data, source, err := fetcher.Fetch(ctx, req)
	if err != nil {
		l.attachStale(fp, err)
		return landscapist.Payload{}, err
	}

	payload, err := l.decodeData(data)
	if err != nil {
		return landscapist.Payload{}, err
	}
	payload.From = source

	if source == landscapist.DataSourceNetwork && l.disk != nil {
		if err := l.disk.Set(fp, data, string(payload.Format)); err != nil {
			l.log.Warn().Err(err).Str("source", describe(req)).Msg("disk cache write failed")
		}
	}
	l.mem.add(fp, *payload)

	l.log.Debug().
		Str("source", describe(req)).
		Str("format", string(payload.Format)).
		Str("from", string(source)).
		Msg("image loaded")
	return *payload, nil
}

// decodeData sniffs the format and dispatches to the registered decoder.
func (l *Loader) decodeData(data []byte) (*landscapist.Payload, error) {
	if len(data) == 0 {
		return nil, pkgerrors.NewDecodeError("unknown", pkgerrors.ErrUnsupportedImage)
	}
	format := sniffFormat(data)
	if err := checkDimensions(data); err != nil {
		return nil, pkgerrors.NewDecodeError(string(format), err)
	}
	if fn, ok := l.decoders[format]; ok {
		return fn(data)
	}
	return decodeAny(data)
}

// attachStale decorates a fetch failure with the previously cached image
// so the presentation layer can keep showing something. Only fetch
// errors that do not already carry a partial are touched.
func (l *Loader) attachStale(fp string, err error) {
	if l.disk == nil {
		return
	}
	var ferr *pkgerrors.FetchError
	if !errors.As(err, &ferr) || ferr.Partial != nil {
		return
	}
	data, gerr := l.disk.Get(fp)
	if gerr != nil {
		return
	}
	if payload, derr := l.decodeData(data); derr == nil {
		ferr.Partial = payload.Image
	}
}

// ClearCaches drops every cached payload and stored object.
func (l *Loader) ClearCaches() error {
	l.mem.purge()
	if l.disk != nil {
		return l.disk.Clear()
	}
	return nil
}

func describe(req landscapist.Request) string {
	switch {
	case req.URL() != "":
		return req.URL()
	case len(req.Data()) > 0:
		return "(bytes)"
	default:
		return "(image)"
	}
}
