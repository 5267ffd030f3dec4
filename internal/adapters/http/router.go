package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, WebSocket and page routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP. Tiles and sequence steps come in bursts, so
	// the budget is higher than for a plain JSON API.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/datasets", timeout.NewWithContext(ListDatasetsHandler(deps), requestTimeout))
	v1.Get("/datasets/:name", timeout.NewWithContext(GetDatasetHandler(deps), requestTimeout))
	v1.Get("/datasets/:name/attributes", timeout.NewWithContext(DatasetAttributesHandler(deps), requestTimeout))
	v1.Get("/datasets/:name/features", timeout.NewWithContext(DatasetFeaturesHandler(deps), requestTimeout))
	v1.Get("/datasets/:name/legend", timeout.NewWithContext(LegendHandler(deps), requestTimeout))
	v1.Get("/datasets/:name/stats", timeout.NewWithContext(StatsHandler(deps), requestTimeout))
	v1.Get("/datasets/:name/markers/at", timeout.NewWithContext(MarkerAtHandler(deps), requestTimeout))

	// Sequence controls
	v1.Get("/sequence", GetSequenceHandler(deps))
	v1.Post("/sequence/forward", ForwardHandler(deps))
	v1.Post("/sequence/reverse", ReverseHandler(deps))
	v1.Put("/sequence", SetSequenceHandler(deps))

	// Frames
	v1.Get("/frame", timeout.NewWithContext(FrameHandler(deps), requestTimeout))
	v1.Get("/frame.svg", timeout.NewWithContext(FrameSVGHandler(deps), requestTimeout))
	v1.Get("/frames/:index", timeout.NewWithContext(FrameAtHandler(deps), requestTimeout))

	// Layer control
	v1.Put("/layers/:name/visibility", LayerVisibilityHandler(deps))

	// Map page and basemap
	app.Get("/", MapPageHandler(deps))
	app.Get("/tiles/:z/:x/:y", timeout.NewWithContext(TileHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, DefaultSpecPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
