package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint. Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		// The selected year moves with every transition.
		case path == "/v1/sequence", path == "/v1/frame", path == "/v1/frame.svg":
			ttl = "no-cache"

		// Legends and stats default to the selected year unless pinned.
		case strings.HasSuffix(path, "/legend") || strings.HasSuffix(path, "/stats") || strings.HasSuffix(path, "/markers/at"):
			if c.Query("attribute") != "" {
				ttl = "public, max-age=300"
			} else {
				ttl = "no-cache"
			}

		// The current index is served live; visibility toggles change
		// the rest in place. ETags still answer repeat requests.
		case strings.HasPrefix(path, "/v1/frames/"):
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/datasets"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
