package retriever

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github/itish2003/finsight/models"
)

// cacheEntry is one memoized retrieval with its expiry.
type cacheEntry struct {
	results   []models.RetrievalResult
	expiresAt time.Time
}

// resultCache memoizes (query, scope) -> ranked results. Entries expire by
// TTL but are never invalidated automatically on writes: the owning process
// must purge on re-ingestion of the scope.
type resultCache struct {
	entries *lru.Cache[[32]byte, *cacheEntry]
	mu      sync.RWMutex
}

func newResultCache(size int) *resultCache {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// Only reachable with a non-positive size, which is guarded above.
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &resultCache{entries: cache}
}

// get returns a deep copy of the cached results so callers cannot mutate the
// cached slice in place.
func (c *resultCache) get(query, scope string) ([]models.RetrievalResult, bool) {
	key := cacheKey(query, scope)
	now := time.Now()

	c.mu.RLock()
	entry, found := c.entries.Get(key)
	if !found {
		c.mu.RUnlock()
		return nil, false
	}
	if now.After(entry.expiresAt) {
		c.mu.RUnlock()
		c.mu.Lock()
		c.entries.Remove(key)
		c.mu.Unlock()
		return nil, false
	}
	results := copyResults(entry.results)
	c.mu.RUnlock()
	return results, true
}

func (c *resultCache) put(query, scope string, results []models.RetrievalResult, ttl time.Duration) {
	entry := &cacheEntry{
		results:   copyResults(results),
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Lock()
	c.entries.Add(cacheKey(query, scope), entry)
	c.mu.Unlock()
}

func (c *resultCache) purge() {
	c.mu.Lock()
	c.entries.Purge()
	c.mu.Unlock()
}

// cacheKey hashes the query and scope into a fixed-size key.
func cacheKey(query, scope string) [32]byte {
	var data strings.Builder
	data.WriteString(query)
	data.WriteString("|")
	data.WriteString(scope)
	return sha256.Sum256([]byte(data.String()))
}

// copyResults deep-copies results including their metadata maps, so cached
// entries never alias live response objects.
func copyResults(src []models.RetrievalResult) []models.RetrievalResult {
	dst := make([]models.RetrievalResult, len(src))
	for i, res := range src {
		dst[i] = res
		if res.Chunk.Metadata != nil {
			meta := make(map[string]interface{}, len(res.Chunk.Metadata))
			for k, v := range res.Chunk.Metadata {
				meta[k] = v
			}
			dst[i].Chunk.Metadata = meta
		}
	}
	return dst
}
