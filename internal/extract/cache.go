package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/docmark/internal/model"
)

// PageStore is the optional persistent tier behind the in-memory cache.
// Implemented by the SQLite store; nil disables persistence.
type PageStore interface {
	GetPage(ctx context.Context, fingerprint string) (text string, source model.ExtractionSource, ok bool, err error)
	PutPage(ctx context.Context, fingerprint string, text string, source model.ExtractionSource) error
}

type cachedPage struct {
	text   string
	source model.ExtractionSource
}

// Cache holds validated extraction results keyed by page fingerprint.
// Lookups hit the session map first, then the persistent store. Store
// failures are logged and treated as misses; caching is an optimization,
// never a correctness dependency.
type Cache struct {
	mu    sync.RWMutex
	pages map[string]cachedPage
	store PageStore
}

// NewCache creates a cache. store may be nil.
func NewCache(store PageStore) *Cache {
	return &Cache{
		pages: make(map[string]cachedPage),
		store: store,
	}
}

// Fingerprint identifies a page by its content: the cleaned native text
// when the page has any, otherwise the rendered image bytes. Truncated
// sha256 keeps keys short without meaningful collision risk at document
// scale.
func Fingerprint(nativeText string, pngData []byte) string {
	var sum [sha256.Size]byte
	if trimmed := strings.TrimSpace(nativeText); trimmed != "" {
		sum = sha256.Sum256([]byte(trimmed))
	} else {
		sum = sha256.Sum256(pngData)
	}
	return hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached result for a fingerprint, if any.
func (c *Cache) Get(ctx context.Context, fingerprint string) (string, model.ExtractionSource, bool) {
	c.mu.RLock()
	page, ok := c.pages[fingerprint]
	c.mu.RUnlock()
	if ok {
		return page.text, page.source, true
	}

	if c.store == nil {
		return "", "", false
	}
	text, source, ok, err := c.store.GetPage(ctx, fingerprint)
	if err != nil {
		zap.L().Warn("extract: page cache lookup failed", zap.Error(err))
		return "", "", false
	}
	if !ok {
		return "", "", false
	}

	c.mu.Lock()
	c.pages[fingerprint] = cachedPage{text: text, source: source}
	c.mu.Unlock()
	return text, source, true
}

// Put records a validated result in both tiers.
func (c *Cache) Put(ctx context.Context, fingerprint, text string, source model.ExtractionSource) {
	c.mu.Lock()
	c.pages[fingerprint] = cachedPage{text: text, source: source}
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.PutPage(ctx, fingerprint, text, source); err != nil {
		zap.L().Warn("extract: page cache write failed", zap.Error(err))
	}
}

// Reset drops the in-memory tier. Persistent entries are unaffected.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[string]cachedPage)
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
