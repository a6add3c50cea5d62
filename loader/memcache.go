package loader

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/NCSOPHAL/landscapist"
)

// memCache holds decoded payloads keyed by request fingerprint. A nil
// memCache is a valid, always-missing cache.
type memCache struct {
	entries *lru.Cache[string, landscapist.Payload]
}

func newMemCache(size int) (*memCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[string, landscapist.Payload](size)
	if err != nil {
		return nil, err
	}
	return &memCache{entries: entries}, nil
}

func (c *memCache) get(key string) (landscapist.Payload, bool) {
	if c == nil {
		return landscapist.Payload{}, false
	}
	return c.entries.Get(key)
}

func (c *memCache) add(key string, p landscapist.Payload) {
	if c == nil {
		return
	}
	c.entries.Add(key, p)
}

func (c *memCache) purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}
