package landscapist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"sort"
)

// Request is an immutable descriptor of what image to load. Build one with
// NewRequest / NewRequestBytes / NewRequestImage and derive variants through
// the With* methods, which copy rather than mutate. Request identity — and
// therefore pipeline restarts and cache keys — is defined by Fingerprint.
type Request struct {
	url      string
	data     []byte
	img      image.Image
	headers  map[string]string
	refresh  bool
	listener func(State)
}

// NewRequest builds a request for a textual source locator: an http(s) URL,
// a git+ URL, a file:// URL, or a bare filesystem path.
func NewRequest(source string) Request {
	return Request{url: source}
}

// NewRequestBytes builds a request for raw encoded image bytes.
func NewRequestBytes(data []byte) Request {
	return Request{data: data}
}

// NewRequestImage builds a request for an already decoded image. The loader
// passes it through without fetching or caching.
func NewRequestImage(img image.Image) Request {
	return Request{img: img}
}

// WithHeader returns a copy of the request with an additional header applied
// to HTTP fetches.
func (r Request) WithHeader(key, value string) Request {
	headers := make(map[string]string, len(r.headers)+1)
	for k, v := range r.headers {
		headers[k] = v
	}
	headers[key] = value
	r.headers = headers
	return r
}

// WithListener returns a copy of the request whose listener is invoked for
// every state the subscription emits. The listener never participates in
// request identity.
func (r Request) WithListener(fn func(State)) Request {
	r.listener = fn
	return r
}

// WithRefresh returns a copy of the request that bypasses caches for its
// next load. Refresh is load policy, not identity: it does not change the
// fingerprint.
func (r Request) WithRefresh(refresh bool) Request {
	r.refresh = refresh
	return r
}

// URL returns the textual source locator, if any.
func (r Request) URL() string { return r.url }

// Data returns the raw encoded bytes, if any.
func (r Request) Data() []byte { return r.data }

// Image returns the pre-decoded image, if any.
func (r Request) Image() image.Image { return r.img }

// Refresh reports whether this request bypasses caches.
func (r Request) Refresh() bool { return r.refresh }

// Listener returns the state listener, or nil.
func (r Request) Listener() func(State) { return r.listener }

// Header returns the value for an HTTP header set on the request.
func (r Request) Header(key string) (string, bool) {
	v, ok := r.headers[key]
	return v, ok
}

// Headers returns a copy of the request headers.
func (r Request) Headers() map[string]string {
	if len(r.headers) == 0 {
		return nil
	}
	headers := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		headers[k] = v
	}
	return headers
}

// Empty reports whether the request names no source at all.
func (r Request) Empty() bool {
	return r.url == "" && len(r.data) == 0 && r.img == nil
}

// Fingerprint returns a stable hex identity for the request, derived from
// the source locator, headers, and raw bytes. Pre-decoded images hash by
// reference since their pixels are not re-read. Fingerprints key the memory
// and disk caches and decide whether a component restarts its pipeline.
func (r Request) Fingerprint() string {
	h := sha256.New()
	switch {
	case r.img != nil:
		fmt.Fprintf(h, "image:%p", r.img)
	case len(r.data) > 0:
		h.Write([]byte("bytes:"))
		h.Write(r.data)
	default:
		h.Write([]byte("url:"))
		h.Write([]byte(r.url))
	}
	if len(r.headers) > 0 {
		keys := make([]string, 0, len(r.headers))
		for k := range r.headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "\nh:%s=%s", k, r.headers[k])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
