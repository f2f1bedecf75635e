package cache

import (
	"strconv"
	"time"

	"yatube/internal/observability"

	"github.com/gofiber/fiber/v2"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
)

const (
	// DefaultPageTTL is how long a rendered index page is served from cache.
	DefaultPageTTL = 20 * time.Second
	// CacheHeader reports hit or miss on cached routes.
	CacheHeader = "X-Cache"
)

// IndexPageKey builds the cache key for a request: path, raw query and the
// viewer's id, so anonymous and signed-in visitors never share an entry.
func IndexPageKey(c *fiber.Ctx) string {
	key := "index:" + c.Path()
	if q := c.Request().URI().QueryString(); len(q) > 0 {
		key += "?" + string(q)
	}
	viewer := "anon"
	if id, ok := c.Locals("userID").(uint); ok && id != 0 {
		viewer = strconv.FormatUint(uint64(id), 10)
	}
	return key + "|" + viewer
}

// IndexPage returns a response cache middleware for the index route. Entries
// are never invalidated by writes; they expire after ttl or on store Reset.
// skip, when non-nil, bypasses the cache for the request.
func IndexPage(store fiber.Storage, ttl time.Duration, skip func(*fiber.Ctx) bool) fiber.Handler {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	mw := fibercache.New(fibercache.Config{
		Next:         skip,
		Expiration:   ttl,
		CacheHeader:  CacheHeader,
		KeyGenerator: IndexPageKey,
		Storage:      store,
	})

	return func(c *fiber.Ctx) error {
		err := mw(c)
		if result := c.GetRespHeader(CacheHeader); result != "" {
			observability.PageCacheResults.WithLabelValues(result).Inc()
		}
		return err
	}
}
