package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// PDF is a cached document body.
type PDF struct {
	Bytes       []byte
	ContentType string
}

// PDFCache holds document bytes for a short time so repeated viewer range
// requests do not hit the document service.
type PDFCache struct {
	cache *cache.Cache
}

func NewPDFCache(ttl time.Duration) *PDFCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PDFCache{cache: cache.New(ttl, 2*ttl)}
}

func (c *PDFCache) Get(documentID string) (PDF, bool) {
	if x, found := c.cache.Get(documentID); found {
		return x.(PDF), true
	}
	return PDF{}, false
}

func (c *PDFCache) Put(documentID string, pdf PDF) {
	c.cache.Set(documentID, pdf, cache.DefaultExpiration)
}
