package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndexApp(store fiber.Storage, body *string, skip func(*fiber.Ctx) bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-User") == "7" {
			c.Locals("userID", uint(7))
		}
		return c.Next()
	})
	app.Get("/", IndexPage(store, 0, skip), func(c *fiber.Ctx) error {
		return c.SendString(*body)
	})
	return app
}

func get(t *testing.T, app *fiber.App, target, user string) (string, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if user != "" {
		req.Header.Set("X-User", user)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b), resp.Header.Get(CacheHeader)
}

func TestIndexPage_ServesStaleUntilReset(t *testing.T) {
	store := NewMemoryStore()
	body := "first"
	app := newIndexApp(store, &body, nil)

	got, hdr := get(t, app, "/", "")
	assert.Equal(t, "first", got)
	assert.Equal(t, "miss", hdr)

	body = "second"
	got, hdr = get(t, app, "/", "")
	assert.Equal(t, "first", got)
	assert.Equal(t, "hit", hdr)

	require.NoError(t, store.Reset())
	got, hdr = get(t, app, "/", "")
	assert.Equal(t, "second", got)
	assert.Equal(t, "miss", hdr)
}

func TestIndexPage_KeysByQueryAndViewer(t *testing.T) {
	store := NewMemoryStore()
	body := "anon"
	app := newIndexApp(store, &body, nil)

	_, _ = get(t, app, "/", "")

	body = "viewer"
	got, hdr := get(t, app, "/", "7")
	assert.Equal(t, "viewer", got)
	assert.Equal(t, "miss", hdr)

	body = "page2"
	got, hdr = get(t, app, "/?page=2", "")
	assert.Equal(t, "page2", got)
	assert.Equal(t, "miss", hdr)
}

func TestIndexPage_Skip(t *testing.T) {
	store := NewMemoryStore()
	body := "first"
	app := newIndexApp(store, &body, func(*fiber.Ctx) bool { return true })

	_, _ = get(t, app, "/", "")
	body = "second"
	got, _ := get(t, app, "/", "")
	assert.Equal(t, "second", got)
	assert.Equal(t, 0, store.Len())
}
