package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/missionsketch/internal/pkg/metrics"
)

// RouterConfig tunes the middleware stack. Zero values fall back to defaults.
type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimit      int // requests per minute per IP
	SpecPath       string
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.RateLimit <= 0 {
		// Every click is a request while drawing.
		cfg.RateLimit = 600
	}

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
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

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout: fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	with := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, cfg.RequestTimeout)
	}

	v1 := app.Group("/v1")
	v1.Post("/missions", with(CreateMissionHandler(deps)))
	v1.Get("/missions", with(ListMissionsHandler(deps)))
	v1.Get("/missions/:id", with(GetMissionHandler(deps)))
	v1.Delete("/missions/:id", with(CloseMissionHandler(deps)))

	v1.Post("/missions/:id/draw", with(StartDrawingHandler(deps)))
	v1.Delete("/missions/:id/draw", with(CancelDrawingHandler(deps)))
	v1.Post("/missions/:id/draw/vertices", with(AddVertexHandler(deps)))
	v1.Post("/missions/:id/draw/complete", with(CompleteDrawingHandler(deps)))
	v1.Post("/missions/:id/draw/finish", with(FinishDrawingHandler(deps)))

	v1.Delete("/missions/:id/pending-polygon", with(DiscardPendingHandler(deps)))
	v1.Post("/missions/:id/polygon/import", with(ImportPolygonHandler(deps)))

	v1.Get("/missions/:id/legs", with(LegsHandler(deps)))
	v1.Get("/missions/:id/export", with(ExportHandler(deps)))
	v1.Get("/missions/:id/exports", with(ListExportsHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, cfg.SpecPath)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Relay)))
}
