// File path: internal/pipeline/cache.go
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// insightCache memoizes completed responses so a repeated question against
// the same data source is served without re-running the pipeline.
type insightCache struct {
	entries *ttlcache.Cache[string, *Response]
}

func newInsightCache(ttl time.Duration) *insightCache {
	if ttl <= 0 {
		return nil
	}
	c := &insightCache{
		entries: ttlcache.New(ttlcache.WithTTL[string, *Response](ttl)),
	}
	go c.entries.Start()
	return c
}

func (c *insightCache) stop() {
	if c == nil {
		return
	}
	c.entries.Stop()
}

func (c *insightCache) get(key string) *Response {
	if c == nil {
		return nil
	}
	item := c.entries.Get(key)
	if item == nil {
		return nil
	}
	return item.Value()
}

func (c *insightCache) put(key string, resp *Response) {
	if c == nil {
		return
	}
	c.entries.Set(key, resp, ttlcache.DefaultTTL)
}

// cacheKey hashes the normalized question text together with the sorted data
// source identifiers and any extra parameters.
func cacheKey(question string, sourceIDs []string, extra string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	ids := append([]string(nil), sourceIDs...)
	sort.Strings(ids)
	h := sha256.New()
	h.Write([]byte(normalized))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(ids, ",")))
	h.Write([]byte("|"))
	h.Write([]byte(extra))
	return hex.EncodeToString(h.Sum(nil))
}
